package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	BatchStatusActive      = "active"      // asignable por FEFO
	BatchStatusDepleted    = "depleted"    // cantidad llegó a cero por ventas
	BatchStatusExpired     = "expired"     // marcado vencido por flujo manual
	BatchStatusQuarantined = "quarantined" // retirado del pool por el sweeper (conserva cantidad)
)

// Batch representa un lote físico de un producto: un ingreso de mercancía con su
// propia fecha de vencimiento, costo y precio. Es el registro de auditoría del
// inventario: nunca se elimina, solo cambia quantity y status.
//
// Invariantes:
//   - 0 <= Quantity <= OriginalQuantity
//   - Status depleted ⇔ Quantity = 0 tras haber estado activo
//   - UnitPrice es inmutable una vez creado el lote
type Batch struct {
	ID               string
	ProductID        string
	BatchNumber      string // legible, único por producto
	Quantity         int64  // unidades asignables actuales
	OriginalQuantity int64  // snapshot al crear el lote, inmutable
	ExpiryDate       *time.Time // nil = no vence
	UnitCost         decimal.Decimal
	UnitPrice        decimal.Decimal
	SupplierName     string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsExpired indica si el lote está vencido a la fecha dada. Un lote sin
// fecha de vencimiento nunca vence.
func (b *Batch) IsExpired(asOf time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(asOf)
}

// Allocatable indica si el lote participa en la selección FEFO:
// activo, con unidades y no vencido a la fecha dada.
func (b *Batch) Allocatable(asOf time.Time) bool {
	return b.Status == BatchStatusActive && b.Quantity > 0 && !b.IsExpired(asOf)
}

// DaysUntilExpiry días hasta el vencimiento; -1 si no vence.
func (b *Batch) DaysUntilExpiry(asOf time.Time) int {
	if b.ExpiryDate == nil {
		return -1
	}
	return int(b.ExpiryDate.Sub(asOf).Hours() / 24)
}
