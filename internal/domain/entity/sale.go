package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en caja.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// SaleAllocation registra cuántas unidades de una línea salieron de qué lote
// y a qué precio unitario (el del lote en el momento de la asignación).
type SaleAllocation struct {
	ID         string
	SaleItemID string
	BatchID    string
	Quantity   int64
	UnitPrice  decimal.Decimal
}

// SaleItem una línea de la venta; su precio real es la suma de sus asignaciones
// (una venta puede consumir lotes con precios distintos).
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	Quantity    int64
	Allocations []SaleAllocation
}

// Subtotal de la línea: Σ cantidad × precio unitario por lote asignado.
func (i *SaleItem) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range i.Allocations {
		total = total.Add(decimal.NewFromInt(a.Quantity).Mul(a.UnitPrice))
	}
	return total
}

// SaleTransaction es el resultado comprometido de un checkout. Inmutable tras
// crearse; anulaciones y devoluciones son un flujo aparte.
type SaleTransaction struct {
	ID            string
	CustomerRef   string
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal // descuento plano, nunca deja el total negativo
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
	CreatedBy     string
}

// ValidPaymentMethod indica si el método de pago es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}
