package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
)

var ahora = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// loteActivo lote activo de prod-1 con precio dado.
func loteActivo(id string, qty int64, expiry *time.Time, price int64) *entity.Batch {
	return &entity.Batch{
		ID:               id,
		ProductID:        "prod-1",
		BatchNumber:      "BN-" + id,
		Quantity:         qty,
		OriginalQuantity: qty,
		ExpiryDate:       expiry,
		UnitPrice:        decimal.NewFromInt(price),
		Status:           entity.BatchStatusActive,
		CreatedAt:        ahora.AddDate(0, -1, 0),
	}
}

func venceEl(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// motor arma un AllocationEngine sobre un ledger en memoria.
func motor(ledger *fakeLedger) (*appinv.AllocationEngine, *fakePublisher) {
	pub := &fakePublisher{}
	engine := appinv.NewAllocationEngine(
		&fakeTxRunner{ledger},
		&fakeBatchRepo{ledger},
		&fakeClock{at: ahora},
		pub,
	)
	return engine, pub
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate: camino feliz
// ──────────────────────────────────────────────────────────────────────────────

// Asignación multi-lote: decrementa cada lote, marca agotados, registra un
// movimiento por lote con el mismo referenceID y emite BatchDepleted.
func TestAllocate_MultiLoteDecrementaYMarcaAgotado(t *testing.T) {
	ledger := newFakeLedger(
		loteActivo("b1", 10, venceEl(2026, 1, 1), 5),
		loteActivo("b2", 20, venceEl(2026, 2, 1), 6),
	)
	engine, pub := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 15)
	require.NoError(t, err)
	require.True(t, plan.Satisfied())

	outcome, err := engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), ledger.batch("b1").Quantity)
	assert.Equal(t, entity.BatchStatusDepleted, ledger.batch("b1").Status)
	assert.Equal(t, int64(15), ledger.batch("b2").Quantity)
	assert.Equal(t, entity.BatchStatusActive, ledger.batch("b2").Status)

	require.Len(t, ledger.movements, 2, "un movimiento por lote tocado")
	for _, m := range ledger.movements {
		assert.Equal(t, "venta-1", m.ReferenceID)
		assert.Equal(t, entity.MovementReasonSale, m.Reason)
		assert.Negative(t, m.Delta)
	}

	require.Len(t, outcome.Allocations, 2)
	assert.Equal(t, []string{"b1"}, outcome.Depleted)
	require.Len(t, pub.ofType(event.TypeBatchDepleted), 1)
}

// El precio del outcome sale del lote re-leído en commit.
func TestAllocate_CapturaPrecioPorLote(t *testing.T) {
	ledger := newFakeLedger(
		loteActivo("b1", 10, venceEl(2026, 1, 1), 5),
		loteActivo("b2", 20, venceEl(2026, 2, 1), 6),
	)
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 15)
	require.NoError(t, err)
	outcome, err := engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	require.NoError(t, err)

	assert.True(t, outcome.Allocations[0].UnitPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, outcome.Allocations[1].UnitPrice.Equal(decimal.NewFromInt(6)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate: precondiciones y carreras
// ──────────────────────────────────────────────────────────────────────────────

// El motor rechaza planes parciales: decidir sobre un plan incompleto es del caller.
func TestAllocate_RechazaPlanParcial(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 3, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 10)
	require.NoError(t, err)
	require.False(t, plan.Satisfied())

	_, err = engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), ledger.batch("b1").Quantity, "no debe mutar nada")
	assert.Empty(t, ledger.movements)
}

// Carrera perdida: otro checkout consumió el lote entre la selección y el commit.
func TestAllocate_CarreraPerdidaPorCantidad(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 8)
	require.NoError(t, err)

	// Venta concurrente: quedan 2 unidades.
	ledger.batch("b1").Quantity = 2

	_, err = engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrBatchRaceLost)
	assert.Equal(t, int64(2), ledger.batch("b1").Quantity)
	assert.Empty(t, ledger.movements)
}

// El sweeper puso el lote en cuarentena a mitad de vuelo: carrera, no crash.
func TestAllocate_CarreraPerdidaPorCuarentena(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 5)
	require.NoError(t, err)

	ledger.batch("b1").Status = entity.BatchStatusQuarantined

	_, err = engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrBatchRaceLost)
}

// Lote eliminado del ledger a mitad de vuelo.
func TestAllocate_LoteDesaparecido(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 5)
	require.NoError(t, err)

	delete(ledger.batches, "b1")

	_, err = engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad y conservación
// ──────────────────────────────────────────────────────────────────────────────

// Si la asignación falla en el segundo lote, el decremento del primero se
// revierte: ningún lote queda a medio consumir tras una llamada fallida.
func TestAllocate_FalloEnSegundoLoteRevierteElPrimero(t *testing.T) {
	ledger := newFakeLedger(
		loteActivo("b1", 10, venceEl(2026, 1, 1), 5),
		loteActivo("b2", 20, venceEl(2026, 2, 1), 6),
	)
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 15)
	require.NoError(t, err)

	// Forzar fallo al escribir el movimiento del segundo lote.
	errBD := errors.New("fallo simulado de BD")
	ledger.failMovementAt = 2
	ledger.failMovementErr = errBD

	_, err = engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	require.ErrorIs(t, err, errBD)

	assert.Equal(t, int64(10), ledger.batch("b1").Quantity, "el decremento de b1 debe revertirse")
	assert.Equal(t, entity.BatchStatusActive, ledger.batch("b1").Status)
	assert.Equal(t, int64(20), ledger.batch("b2").Quantity)
	assert.Empty(t, ledger.movements, "una llamada fallida no deja movimientos")
}

// Conservación: quantity = Σ delta de los movimientos del lote, siempre
// (el receipt inicial más las salidas por venta).
func TestAllocate_ConservacionDeDeltas(t *testing.T) {
	b := loteActivo("b1", 10, venceEl(2026, 1, 1), 5)
	ledger := newFakeLedger(b)
	// Receipt inicial como lo registra ReceiveStockUseCase.
	ledger.movements = append(ledger.movements, &entity.StockMovement{
		BatchID: "b1", Delta: 10, Reason: entity.MovementReasonReceipt, ReferenceID: "b1",
	})
	engine, _ := motor(ledger)

	for _, qty := range []int64{3, 4} {
		plan, err := engine.Plan(context.Background(), "prod-1", qty)
		require.NoError(t, err)
		_, err = engine.Allocate(context.Background(), plan, "venta", "cajero-1")
		require.NoError(t, err)
		assert.Equal(t, ledger.batch("b1").Quantity, ledger.sumDeltas("b1"),
			"quantity debe igualar la suma de deltas en todo momento")
	}
	assert.Equal(t, int64(3), ledger.batch("b1").Quantity)
}

// No-negatividad: ninguna secuencia de asignaciones deja un lote bajo cero.
func TestAllocate_NuncaNegativo(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	asignadas := int64(0)
	for i := 0; i < 5; i++ {
		plan, err := engine.Plan(context.Background(), "prod-1", 4)
		require.NoError(t, err)
		if !plan.Satisfied() {
			break
		}
		if _, err := engine.Allocate(context.Background(), plan, "venta", "cajero-1"); err != nil {
			break
		}
		asignadas += 4
	}
	assert.Equal(t, int64(8), asignadas, "solo caben dos asignaciones de 4 en 10 unidades")
	assert.GreaterOrEqual(t, ledger.batch("b1").Quantity, int64(0))
}

// ──────────────────────────────────────────────────────────────────────────────
// Compensate
// ──────────────────────────────────────────────────────────────────────────────

// La compensación devuelve las unidades exactas a los lotes exactos, reactiva
// los agotados y registra movimientos reversal con el mismo referenceID.
func TestCompensate_RevierteAsignacion(t *testing.T) {
	ledger := newFakeLedger(
		loteActivo("b1", 10, venceEl(2026, 1, 1), 5),
		loteActivo("b2", 20, venceEl(2026, 2, 1), 6),
	)
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 15)
	require.NoError(t, err)
	outcome, err := engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	require.NoError(t, err)

	require.NoError(t, engine.Compensate(context.Background(), outcome.Allocations, "venta-1", "cajero-1"))

	assert.Equal(t, int64(10), ledger.batch("b1").Quantity)
	assert.Equal(t, entity.BatchStatusActive, ledger.batch("b1").Status, "el lote agotado debe reactivarse")
	assert.Equal(t, int64(20), ledger.batch("b2").Quantity)

	reversals := 0
	for _, m := range ledger.movements {
		if m.Reason == entity.MovementReasonReversal {
			reversals++
			assert.Equal(t, "venta-1", m.ReferenceID)
			assert.Positive(t, m.Delta)
		}
	}
	assert.Equal(t, 2, reversals)
	assert.Equal(t, int64(0), ledger.sumDeltas("b1"), "venta + reversal deben anularse")
}

// Compensar un lote en cuarentena restaura la cantidad sin tocar el estado:
// la cuarentena es del sweeper, no del motor.
func TestCompensate_NoSacaDeCuarentena(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	plan, err := engine.Plan(context.Background(), "prod-1", 4)
	require.NoError(t, err)
	outcome, err := engine.Allocate(context.Background(), plan, "venta-1", "cajero-1")
	require.NoError(t, err)

	ledger.batch("b1").Status = entity.BatchStatusQuarantined

	require.NoError(t, engine.Compensate(context.Background(), outcome.Allocations, "venta-1", "cajero-1"))
	assert.Equal(t, int64(10), ledger.batch("b1").Quantity)
	assert.Equal(t, entity.BatchStatusQuarantined, ledger.batch("b1").Status)
}

// Compensar una lista vacía es un no-op.
func TestCompensate_ListaVaciaNoOp(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	require.NoError(t, engine.Compensate(context.Background(), nil, "venta-1", "cajero-1"))
	assert.Empty(t, ledger.movements)
}

// Una compensación nunca puede superar la cantidad original del lote.
func TestCompensate_NoSuperaCantidadOriginal(t *testing.T) {
	ledger := newFakeLedger(loteActivo("b1", 10, venceEl(2026, 1, 1), 5))
	engine, _ := motor(ledger)

	err := engine.Compensate(context.Background(), []dominv.BatchAllocation{
		{BatchID: "b1", Quantity: 5},
	}, "venta-1", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(10), ledger.batch("b1").Quantity)
}
