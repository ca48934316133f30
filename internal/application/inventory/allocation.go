package inventory

import (
	"context"
	"fmt"

	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// AllocationEngine ejecuta planes FEFO contra el libro de lotes. Es el único
// componente que decrementa lotes por venta; el rollback transaccional
// garantiza que una llamada fallida no deja lotes a medio consumir.
type AllocationEngine struct {
	txRunner  TxRunner
	batchRepo repository.BatchRepository // lectura fuera de tx (Plan)
	clock     Clock
	publisher Publisher
}

// NewAllocationEngine construye el motor.
func NewAllocationEngine(
	txRunner TxRunner,
	batchRepo repository.BatchRepository,
	clock Clock,
	publisher Publisher,
) *AllocationEngine {
	return &AllocationEngine{
		txRunner:  txRunner,
		batchRepo: batchRepo,
		clock:     clock,
		publisher: publisher,
	}
}

// AllocationOutcome resultado de una asignación ejecutada.
type AllocationOutcome struct {
	ReferenceID string
	ProductID   string
	Allocations []dominv.BatchAllocation // como se ejecutaron, con el precio re-leído del lote
	Depleted    []string                 // lotes que llegaron a cero en esta llamada
}

// Plan arma un plan FEFO especulativo para el producto. Solo lectura: dos
// llamadas sobre el mismo estado del ledger producen el mismo plan.
func (e *AllocationEngine) Plan(ctx context.Context, productID string, quantityNeeded int64) (*dominv.AllocationPlan, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	batches, err := e.batchRepo.ListAllocatable(productID)
	if err != nil {
		return nil, fmt.Errorf("listar lotes asignables: %w", err)
	}
	plan, err := dominv.SelectBatches(batches, quantityNeeded, e.clock.Now())
	if err != nil {
		return nil, err
	}
	plan.ProductID = productID
	return plan, nil
}

// Allocate ejecuta el plan dentro de una transacción. Por cada entrada re-lee
// el lote con bloqueo de fila (la lectura de la selección no cuenta): si el
// lote desapareció, fue puesto en cuarentena o ya no tiene unidades
// suficientes, la llamada completa falla y la tx revierte lo ya aplicado.
//
// Rechaza planes parciales: un plan con UnsatisfiedQuantity > 0 es decisión
// del caller, nunca del motor.
func (e *AllocationEngine) Allocate(ctx context.Context, plan *dominv.AllocationPlan, referenceID, actorID string) (*AllocationOutcome, error) {
	if plan == nil || len(plan.Entries) == 0 || referenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !plan.Satisfied() {
		return nil, domain.ErrInsufficientStock
	}

	now := e.clock.Now()
	outcome := &AllocationOutcome{ReferenceID: referenceID, ProductID: plan.ProductID}

	err := e.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		for _, entry := range plan.Entries {
			b, err := batchRepo.GetForUpdate(entry.BatchID)
			if err != nil {
				return err
			}
			if b == nil {
				return domain.ErrBatchNotFound
			}
			// Re-validación optimista en commit: el estado pudo cambiar
			// entre la selección y este punto.
			if !b.Allocatable(now) {
				return domain.ErrBatchRaceLost
			}
			if b.Quantity < entry.Quantity {
				return domain.ErrBatchRaceLost
			}

			newQty := b.Quantity - entry.Quantity
			status := b.Status
			if newQty == 0 {
				status = entity.BatchStatusDepleted
			}
			if err := batchRepo.UpdateQuantityAndStatus(b.ID, newQty, status); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.StockMovement{
				BatchID:     b.ID,
				Delta:       -entry.Quantity,
				Reason:      entity.MovementReasonSale,
				ReferenceID: referenceID,
				ActorID:     actorID,
				CreatedAt:   now,
			}); err != nil {
				return err
			}

			// El precio cobrado es el del lote re-leído (inmutable, pero el
			// outcome nunca debe depender del snapshot de la selección).
			outcome.Allocations = append(outcome.Allocations, dominv.BatchAllocation{
				BatchID:   b.ID,
				Quantity:  entry.Quantity,
				UnitPrice: b.UnitPrice,
			})
			if newQty == 0 {
				outcome.Depleted = append(outcome.Depleted, b.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, batchID := range outcome.Depleted {
		e.publisher.Publish(ctx, event.NewBatchDepleted(batchID, plan.ProductID, now))
	}
	return outcome, nil
}

// Compensate revierte asignaciones ya ejecutadas de una venta que falló a
// mitad: devuelve las unidades exactas a los lotes exactos, reactiva los que
// habían quedado agotados y registra un movimiento reversal por lote con el
// mismo ReferenceID. Nunca toca lotes en cuarentena más allá de su cantidad:
// la cuarentena es un estado del sweeper, no del motor.
func (e *AllocationEngine) Compensate(ctx context.Context, allocations []dominv.BatchAllocation, referenceID, actorID string) error {
	if len(allocations) == 0 {
		return nil
	}
	if referenceID == "" {
		return domain.ErrInvalidInput
	}

	now := e.clock.Now()
	return e.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		for _, alloc := range allocations {
			b, err := batchRepo.GetForUpdate(alloc.BatchID)
			if err != nil {
				return err
			}
			if b == nil {
				return domain.ErrBatchNotFound
			}
			newQty := b.Quantity + alloc.Quantity
			if newQty > b.OriginalQuantity {
				return fmt.Errorf("compensar lote %s: %d supera la cantidad original %d: %w",
					b.ID, newQty, b.OriginalQuantity, domain.ErrConflict)
			}
			status := b.Status
			if status == entity.BatchStatusDepleted && newQty > 0 {
				status = entity.BatchStatusActive
			}
			if err := batchRepo.UpdateQuantityAndStatus(b.ID, newQty, status); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.StockMovement{
				BatchID:     b.ID,
				Delta:       alloc.Quantity,
				Reason:      entity.MovementReasonReversal,
				ReferenceID: referenceID,
				ActorID:     actorID,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
