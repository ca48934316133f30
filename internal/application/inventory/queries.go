package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// QueryUseCase lado de lectura del inventario: lotes, movimientos (rastro de
// auditoría), disponibilidad y lista de reposición. Solo lecturas.
type QueryUseCase struct {
	batchRepo   repository.BatchRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	clock       Clock
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	clock Clock,
) *QueryUseCase {
	return &QueryUseCase{batchRepo: batchRepo, movRepo: movRepo, productRepo: productRepo, clock: clock}
}

// ListBatches lotes de un producto; con expiringWithinDays > 0 filtra a los
// que vencen dentro de esa ventana (para alertas de vencimiento en mostrador).
func (uc *QueryUseCase) ListBatches(ctx context.Context, productID string, expiringWithinDays int) ([]*entity.Batch, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	batches, err := uc.batchRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	if expiringWithinDays <= 0 {
		return batches, nil
	}
	now := uc.clock.Now()
	filtered := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		days := b.DaysUntilExpiry(now)
		if days >= 0 && days <= expiringWithinDays {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Availability cantidad total asignable del producto (lotes activos no
// vencidos). Es la misma suma que usa la guardia de revalidación.
func (uc *QueryUseCase) Availability(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, domain.ErrInvalidInput
	}
	batches, err := uc.batchRepo.ListAllocatable(productID)
	if err != nil {
		return 0, err
	}
	return dominv.AvailableQuantity(batches, uc.clock.Now()), nil
}

// ListMovementsByBatch movimientos de un lote, más recientes primero.
func (uc *QueryUseCase) ListMovementsByBatch(ctx context.Context, batchID string, limit, offset int) ([]*entity.StockMovement, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByBatch(batchID, limit, offset)
}

// ListMovementsByProduct movimientos de todos los lotes de un producto en un
// rango de fechas opcional.
func (uc *QueryUseCase) ListMovementsByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByProduct(productID, from, to, limit, offset)
}

// ReorderList productos cuyo stock asignable está en o bajo su punto de
// reorden, para armar el pedido al proveedor.
func (uc *QueryUseCase) ReorderList(ctx context.Context) ([]repository.ReorderItem, error) {
	return uc.productRepo.ListBelowReorderThreshold()
}
