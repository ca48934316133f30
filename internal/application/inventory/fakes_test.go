package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ledger en memoria con transacciones por snapshot.
//
// El TxRunner falso copia el estado antes de ejecutar fn y lo restaura si fn
// falla: el mismo contrato todo-o-nada que da la transacción PostgreSQL real.
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	batches   map[string]*entity.Batch
	movements []*entity.StockMovement

	// failMovementAt fuerza un error en el N-ésimo Create de movimiento
	// (1-based) dentro de la tx en curso, para probar la atomicidad.
	failMovementAt  int
	failMovementErr error
	movementCount   int
}

func newFakeLedger(batches ...*entity.Batch) *fakeLedger {
	l := &fakeLedger{batches: make(map[string]*entity.Batch)}
	for _, b := range batches {
		copia := *b
		l.batches[b.ID] = &copia
	}
	return l
}

func (l *fakeLedger) batch(id string) *entity.Batch { return l.batches[id] }

// sumDeltas Σ delta de los movimientos de un lote (propiedad de conservación).
func (l *fakeLedger) sumDeltas(batchID string) int64 {
	var sum int64
	for _, m := range l.movements {
		if m.BatchID == batchID {
			sum += m.Delta
		}
	}
	return sum
}

func (l *fakeLedger) snapshot() *fakeLedger {
	snap := &fakeLedger{batches: make(map[string]*entity.Batch, len(l.batches))}
	for id, b := range l.batches {
		copia := *b
		snap.batches[id] = &copia
	}
	snap.movements = append([]*entity.StockMovement(nil), l.movements...)
	return snap
}

func (l *fakeLedger) restore(snap *fakeLedger) {
	l.batches = snap.batches
	l.movements = snap.movements
}

// fakeTxRunner implementa inventory.TxRunner sobre el ledger en memoria.
type fakeTxRunner struct {
	ledger *fakeLedger
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	snap := r.ledger.snapshot()
	r.ledger.movementCount = 0
	if err := fn(&fakeBatchRepo{r.ledger}, &fakeMovementRepo{r.ledger}); err != nil {
		r.ledger.restore(snap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repos falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeBatchRepo struct{ l *fakeLedger }

var _ repository.BatchRepository = (*fakeBatchRepo)(nil)

func (r *fakeBatchRepo) Create(b *entity.Batch) error {
	copia := *b
	r.l.batches[b.ID] = &copia
	return nil
}

func (r *fakeBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.l.batches[id]
	if !ok {
		return nil, nil
	}
	copia := *b
	return &copia, nil
}

func (r *fakeBatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *fakeBatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	return r.list(func(b *entity.Batch) bool { return b.ProductID == productID }), nil
}

func (r *fakeBatchRepo) ListAllocatable(productID string) ([]*entity.Batch, error) {
	return r.list(func(b *entity.Batch) bool {
		return b.ProductID == productID && b.Status == entity.BatchStatusActive && b.Quantity > 0
	}), nil
}

func (r *fakeBatchRepo) ListActiveExpiredBefore(asOf time.Time) ([]*entity.Batch, error) {
	return r.list(func(b *entity.Batch) bool {
		return b.Status == entity.BatchStatusActive && b.ExpiryDate != nil && b.ExpiryDate.Before(asOf)
	}), nil
}

func (r *fakeBatchRepo) list(keep func(*entity.Batch) bool) []*entity.Batch {
	var out []*entity.Batch
	for _, b := range r.l.batches {
		if keep(b) {
			copia := *b
			out = append(out, &copia)
		}
	}
	// Orden estable por ID para que los tests sean deterministas.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeBatchRepo) UpdateQuantityAndStatus(id string, quantity int64, status string) error {
	b := r.l.batches[id]
	b.Quantity = quantity
	b.Status = status
	return nil
}

func (r *fakeBatchRepo) UpdateStatus(id string, status string) error {
	r.l.batches[id].Status = status
	return nil
}

type fakeMovementRepo struct{ l *fakeLedger }

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.l.movementCount++
	if r.l.failMovementAt > 0 && r.l.movementCount == r.l.failMovementAt {
		return r.l.failMovementErr
	}
	copia := *m
	r.l.movements = append(r.l.movements, &copia)
	return nil
}

func (r *fakeMovementRepo) ListByBatch(batchID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.l.movements {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.l.movements, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reloj y publisher falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeClock struct{ at time.Time }

func (c *fakeClock) Now() time.Time { return c.at }

type fakePublisher struct{ events []event.Event }

func (p *fakePublisher) Publish(_ context.Context, evt event.Event) {
	p.events = append(p.events, evt)
}

func (p *fakePublisher) ofType(eventType string) []event.Event {
	var out []event.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
