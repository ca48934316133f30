package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// PriceOracle deriva el precio vigente de un producto: el precio unitario del
// lote que FEFO consumiría primero. No cachea nada — se recalcula en cada
// lectura, así que agotar un lote, crear uno o ponerlo en cuarentena se
// refleja de inmediato, sin ventanas de refresco.
type PriceOracle struct {
	batchRepo repository.BatchRepository
	clock     Clock
}

// NewPriceOracle construye el oráculo.
func NewPriceOracle(batchRepo repository.BatchRepository, clock Clock) *PriceOracle {
	return &PriceOracle{batchRepo: batchRepo, clock: clock}
}

// CurrentPrice precio vigente del producto, o ErrNoActiveBatch si no hay
// lotes asignables. Lectura pura, mismo orden que la selección (§ FEFO) con
// cantidad conceptual cero: selecciona, no consume.
func (o *PriceOracle) CurrentPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	batches, err := o.batchRepo.ListAllocatable(productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listar lotes asignables: %w", err)
	}
	first := dominv.FirstAllocatable(batches, o.clock.Now())
	if first == nil {
		return decimal.Zero, domain.ErrNoActiveBatch
	}
	return first.UnitPrice, nil
}
