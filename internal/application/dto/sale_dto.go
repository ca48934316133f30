package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// CartLineRequest línea de carrito tal como la envía la caja.
type CartLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// ValidateCartRequest entrada de la guardia de revalidación.
type ValidateCartRequest struct {
	Lines []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ValidateCartResponse resultado de la revalidación.
type ValidateCartResponse struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// SettleRequest entrada del punto único de liquidación de venta.
type SettleRequest struct {
	Lines         []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
	CustomerRef   string            `json:"customer_ref" validate:"max=200"`
	Discount      decimal.Decimal   `json:"discount"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer"`
}

// SaleAllocationResponse una asignación de lote dentro de una línea de venta.
type SaleAllocationResponse struct {
	BatchID   string          `json:"batch_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleItemResponse línea de venta con sus asignaciones.
type SaleItemResponse struct {
	ID          string                   `json:"id"`
	ProductID   string                   `json:"product_id"`
	Quantity    int64                    `json:"quantity"`
	Subtotal    decimal.Decimal          `json:"subtotal"`
	Allocations []SaleAllocationResponse `json:"allocations"`
}

// SaleResponse venta comprometida.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerRef   string             `json:"customer_ref,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Change        decimal.Decimal    `json:"change"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
	CreatedBy     string             `json:"created_by"`
}

// ToSaleResponse mapea la venta a su DTO.
func ToSaleResponse(s *entity.SaleTransaction) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for i := range s.Items {
		item := &s.Items[i]
		allocs := make([]SaleAllocationResponse, 0, len(item.Allocations))
		for _, a := range item.Allocations {
			allocs = append(allocs, SaleAllocationResponse{
				BatchID:   a.BatchID,
				Quantity:  a.Quantity,
				UnitPrice: a.UnitPrice,
				Subtotal:  decimal.NewFromInt(a.Quantity).Mul(a.UnitPrice),
			})
		}
		items = append(items, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
			Allocations: allocs,
		})
	}
	return SaleResponse{
		ID:            s.ID,
		CustomerRef:   s.CustomerRef,
		Items:         items,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		PaymentMethod: s.PaymentMethod,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
	}
}
