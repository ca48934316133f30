package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// ReceiveStockRequest entrada para registrar la recepción de un lote.
type ReceiveStockRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	BatchNumber  string          `json:"batch_number" validate:"required,min=1,max=100"`
	Quantity     int64           `json:"quantity" validate:"required,min=1"`
	ExpiryDate   *time.Time      `json:"expiry_date"` // nil = sin vencimiento declarado
	UnitCost     decimal.Decimal `json:"unit_cost"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SupplierName string          `json:"supplier_name" validate:"max=200"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	BatchNumber      string          `json:"batch_number"`
	Quantity         int64           `json:"quantity"`
	OriginalQuantity int64           `json:"original_quantity"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	SupplierName     string          `json:"supplier_name"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AvailabilityResponse stock asignable vigente de un producto.
type AvailabilityResponse struct {
	ProductID string `json:"product_id"`
	Available int64  `json:"available"`
}

// PriceResponse precio vigente según el oráculo FEFO.
type PriceResponse struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// MovementResponse salida de un movimiento del libro de auditoría.
type MovementResponse struct {
	ID          string    `json:"id"`
	BatchID     string    `json:"batch_id"`
	Delta       int64     `json:"delta"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id"`
	ActorID     string    `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// SweepRequest cuerpo opcional del barrido: el scheduler externo puede fijar
// el instante de corte; sin as_of se barre al instante actual.
type SweepRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// SweepResponse resumen de una corrida del barrido de cuarentena.
type SweepResponse struct {
	Quarantined []string  `json:"quarantined"` // IDs de lotes retirados en esta corrida
	SweptAt     time.Time `json:"swept_at"`
}

// ToBatchResponse mapea la entidad a su DTO.
func ToBatchResponse(b *entity.Batch) BatchResponse {
	return BatchResponse{
		ID:               b.ID,
		ProductID:        b.ProductID,
		BatchNumber:      b.BatchNumber,
		Quantity:         b.Quantity,
		OriginalQuantity: b.OriginalQuantity,
		ExpiryDate:       b.ExpiryDate,
		UnitCost:         b.UnitCost,
		UnitPrice:        b.UnitPrice,
		SupplierName:     b.SupplierName,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
	}
}

// ToMovementResponse mapea la entidad a su DTO.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		BatchID:     m.BatchID,
		Delta:       m.Delta,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		ActorID:     m.ActorID,
		CreatedAt:   m.CreatedAt,
	}
}
