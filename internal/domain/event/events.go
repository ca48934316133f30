// Package event define los eventos salientes del motor de inventario.
// Son hechos fire-and-forget para consumidores externos (notificador,
// analítica); el motor no espera confirmación.
package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento.
const (
	TypeBatchDepleted    = "BatchDepleted"
	TypeBatchQuarantined = "BatchQuarantined"
	TypeSaleCommitted    = "SaleCommitted"
)

// Event interfaz mínima de un evento de dominio.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

type base struct {
	At time.Time
}

func (b base) OccurredAt() time.Time { return b.At }

// BatchDepleted se emite cuando un lote llega a cero unidades por ventas.
type BatchDepleted struct {
	base
	BatchID   string
	ProductID string
}

// NewBatchDepleted construye el evento.
func NewBatchDepleted(batchID, productID string, at time.Time) BatchDepleted {
	return BatchDepleted{base: base{At: at}, BatchID: batchID, ProductID: productID}
}

func (BatchDepleted) EventType() string { return TypeBatchDepleted }

// BatchQuarantined se emite cuando el sweeper retira un lote vencido del pool.
type BatchQuarantined struct {
	base
	BatchID   string
	ProductID string
	ExpiredOn time.Time
}

// NewBatchQuarantined construye el evento.
func NewBatchQuarantined(batchID, productID string, expiredOn, at time.Time) BatchQuarantined {
	return BatchQuarantined{base: base{At: at}, BatchID: batchID, ProductID: productID, ExpiredOn: expiredOn}
}

func (BatchQuarantined) EventType() string { return TypeBatchQuarantined }

// SaleCommitted se emite al confirmar una venta.
type SaleCommitted struct {
	base
	TransactionID string
	Total         decimal.Decimal
}

// NewSaleCommitted construye el evento.
func NewSaleCommitted(transactionID string, total decimal.Decimal, at time.Time) SaleCommitted {
	return SaleCommitted{base: base{At: at}, TransactionID: transactionID, Total: total}
}

func (SaleCommitted) EventType() string { return TypeSaleCommitted }
