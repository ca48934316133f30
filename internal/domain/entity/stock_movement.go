package entity

import "time"

// Razones de movimiento de stock.
const (
	MovementReasonSale       = "sale"              // salida por venta (delta negativo)
	MovementReasonReversal   = "reversal"          // compensación de una venta fallida (delta positivo)
	MovementReasonAdjustment = "manual_adjustment" // ajuste manual
	MovementReasonReceipt    = "receipt"           // ingreso de mercancía al crear el lote
	MovementReasonQuarantine = "quarantine"        // cuarentena por vencimiento (delta cero)
)

// StockMovement es el registro append-only de cada cambio sobre un lote.
// Nunca se muta tras crearse. Para cualquier lote se cumple:
//
//	Quantity = Σ Delta de sus movimientos
//
// porque la creación del lote registra un movimiento receipt de +OriginalQuantity.
// Una venta multi-lote produce varios movimientos con el mismo ReferenceID.
type StockMovement struct {
	ID          string
	BatchID     string
	Delta       int64  // con signo: + entra, - sale, 0 cambio de estado
	Reason      string
	ReferenceID string // id de venta, de lote (receipt) o de corrida del sweeper
	ActorID     string
	CreatedAt   time.Time
}
