package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
	"github.com/tu-usuario/farmacia-pos/pkg/logger"
)

// QuarantineSweeper retira del pool asignable los lotes activos ya vencidos.
// No toca la cantidad: las unidades siguen existiendo físicamente hasta que
// un flujo de disposición aparte las retire; el lote es el rastro de
// auditoría. Idempotente: re-ejecutar con el mismo asOf no transiciona nada.
//
// Puede correr concurrente con el motor de asignación: si un lote entra en
// cuarentena entre la selección y el commit de una venta, la re-lectura del
// motor lo detecta como carrera perdida, no como un crash.
type QuarantineSweeper struct {
	txRunner  TxRunner
	clock     Clock
	publisher Publisher
	log       *logger.Logger
}

// NewQuarantineSweeper construye el sweeper.
func NewQuarantineSweeper(txRunner TxRunner, clock Clock, publisher Publisher, log *logger.Logger) *QuarantineSweeper {
	return &QuarantineSweeper{txRunner: txRunner, clock: clock, publisher: publisher, log: log}
}

// Sweep transiciona a quarantined todo lote activo con vencimiento anterior a
// asOf y devuelve sus IDs. Registra un movimiento delta cero por lote (razón
// quarantine) con el ID de la corrida como referencia compartida.
func (s *QuarantineSweeper) Sweep(ctx context.Context, asOf time.Time) ([]string, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	runID := uuid.New().String()
	now := s.clock.Now()

	var swept []*entity.Batch
	err := s.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		batches, err := batchRepo.ListActiveExpiredBefore(asOf)
		if err != nil {
			return err
		}
		for _, b := range batches {
			if err := batchRepo.UpdateStatus(b.ID, entity.BatchStatusQuarantined); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.StockMovement{
				BatchID:     b.ID,
				Delta:       0,
				Reason:      entity.MovementReasonQuarantine,
				ReferenceID: runID,
				ActorID:     "sweeper",
				CreatedAt:   now,
			}); err != nil {
				return err
			}
			swept = append(swept, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(swept))
	for _, b := range swept {
		ids = append(ids, b.ID)
		expiry := time.Time{}
		if b.ExpiryDate != nil {
			expiry = *b.ExpiryDate
		}
		s.publisher.Publish(ctx, event.NewBatchQuarantined(b.ID, b.ProductID, expiry, now))
	}
	if len(ids) > 0 {
		s.log.Info().
			Str("run_id", runID).
			Int("quarantined", len(ids)).
			Time("as_of", asOf).
			Msg("sweeper: lotes vencidos puestos en cuarentena")
	}
	return ids, nil
}
