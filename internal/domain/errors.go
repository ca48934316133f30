package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Errores del motor de asignación por lotes.
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrBatchNotFound       = errors.New("lote no encontrado o fuera del pool activo")
	ErrBatchRaceLost       = errors.New("el lote cambió entre la selección y el commit")
	ErrNoActiveBatch       = errors.New("el producto no tiene lotes activos vigentes")
	ErrValidationFailed    = errors.New("el carrito no pasó la revalidación de stock")
	ErrPaymentInsufficient = errors.New("el monto pagado no cubre el total de la venta")
)
