package repository

import (
	"time"

	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// BatchRepository puerto de persistencia del libro de lotes. Toda mutación de
// lotes pasa por el motor de asignación o el sweeper; ningún caller escribe
// un lote directamente.
type BatchRepository interface {
	// Create persiste un lote nuevo (quantity = originalQuantity, status active).
	Create(batch *entity.Batch) error
	// GetByID obtiene un lote por ID; nil si no existe.
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate obtiene el lote bloqueando la fila (SELECT FOR UPDATE).
	// Es la re-lectura en commit que cierra la carrera selección→asignación.
	GetForUpdate(id string) (*entity.Batch, error)
	// ListByProduct lista todos los lotes de un producto (incluye agotados y en cuarentena).
	ListByProduct(productID string) ([]*entity.Batch, error)
	// ListAllocatable lista los lotes activos con unidades de un producto.
	// El filtro de vencimiento y el orden FEFO son del dominio, no del SQL.
	ListAllocatable(productID string) ([]*entity.Batch, error)
	// ListActiveExpiredBefore lista lotes activos vencidos antes de asOf,
	// bloqueando las filas (para el sweeper).
	ListActiveExpiredBefore(asOf time.Time) ([]*entity.Batch, error)
	// UpdateQuantityAndStatus actualiza cantidad y estado de un lote.
	UpdateQuantityAndStatus(id string, quantity int64, status string) error
	// UpdateStatus actualiza solo el estado.
	UpdateStatus(id string, status string) error
}
