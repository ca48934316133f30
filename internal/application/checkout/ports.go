package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	appinv "github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// Allocator contrato del motor de asignación visto desde la liquidación.
// Cada Allocate es una transacción propia; Compensate revierte asignaciones
// de llamadas anteriores cuando la venta falla a mitad.
type Allocator interface {
	Plan(ctx context.Context, productID string, quantityNeeded int64) (*dominv.AllocationPlan, error)
	Allocate(ctx context.Context, plan *dominv.AllocationPlan, referenceID, actorID string) (*appinv.AllocationOutcome, error)
	Compensate(ctx context.Context, allocations []dominv.BatchAllocation, referenceID, actorID string) error
}

// PriceReader oráculo de precios para el total provisional previo al cobro.
type PriceReader interface {
	CurrentPrice(ctx context.Context, productID string) (decimal.Decimal, error)
}

// Revalidator guardia de revalidación de carrito.
type Revalidator interface {
	Revalidate(ctx context.Context, lines []CartLine) (*ValidationReport, error)
}

// SaleTxRunner persiste la venta (cabecera, líneas y asignaciones) en una
// transacción propia.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error
}
