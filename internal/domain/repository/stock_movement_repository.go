package repository

import (
	"time"

	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// StockMovementRepository puerto del registro append-only de movimientos.
type StockMovementRepository interface {
	// Create persiste un movimiento; genera ID si viene vacío.
	Create(movement *entity.StockMovement) error
	// ListByBatch lista los movimientos de un lote, más recientes primero.
	ListByBatch(batchID string, limit, offset int) ([]*entity.StockMovement, error)
	// ListByProduct lista los movimientos de todos los lotes de un producto
	// en un rango de fechas opcional.
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
