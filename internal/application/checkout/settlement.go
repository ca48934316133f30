package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	appinv "github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
	"github.com/tu-usuario/farmacia-pos/pkg/logger"
)

// Estados de una liquidación. Building ocurre del lado del cliente (el
// carrito se arma sin tocar el ledger); aquí la máquina arranca en Validating.
const (
	StateValidating = "validating"
	StateAllocating = "allocating"
	StateCommitted  = "committed"
	StateAborted    = "aborted"
)

// ValidationError falla de revalidación con la lista de problemas para la
// caja. errors.Is(err, domain.ErrValidationFailed) == true.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return domain.ErrValidationFailed.Error() + ": " + strings.Join(e.Issues, "; ")
}

// Unwrap permite el match con el sentinel de dominio.
func (e *ValidationError) Unwrap() error { return domain.ErrValidationFailed }

// SettleInput entrada del punto único de liquidación.
type SettleInput struct {
	Lines         []CartLine
	CustomerRef   string
	Discount      decimal.Decimal // descuento plano sobre el subtotal
	AmountPaid    decimal.Decimal
	PaymentMethod string
	ActorID       string
}

// SettlementUseCase orquesta el checkout: guardia → asignación por línea →
// totales → persistencia de la venta. Una venta multi-línea es todo-o-nada
// aunque cada línea se asigne en una transacción separada: si cualquier
// línea falla, las ya asignadas se compensan antes de abortar, así que el
// caller nunca observa una venta a medio comprometer.
type SettlementUseCase struct {
	guard     Revalidator
	allocator Allocator
	prices    PriceReader
	saleTx    SaleTxRunner
	clock     appinv.Clock
	publisher appinv.Publisher
	log       *logger.Logger
}

// NewSettlementUseCase construye el caso de uso.
func NewSettlementUseCase(
	guard Revalidator,
	allocator Allocator,
	prices PriceReader,
	saleTx SaleTxRunner,
	clock appinv.Clock,
	publisher appinv.Publisher,
	log *logger.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		guard:     guard,
		allocator: allocator,
		prices:    prices,
		saleTx:    saleTx,
		clock:     clock,
		publisher: publisher,
		log:       log,
	}
}

// Settle ejecuta la máquina de estados completa y devuelve la venta
// comprometida o un error tipado. Reglas de dinero: subtotal = Σ cantidad ×
// precio asignado; total = max(0, subtotal − descuento); cambio =
// max(0, pagado − total). El pago se rechaza antes de asignar nada.
func (uc *SettlementUseCase) Settle(ctx context.Context, in SettleInput) (*entity.SaleTransaction, error) {
	if len(in.Lines) == 0 || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if in.Discount.IsNegative() || in.AmountPaid.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	saleID := uuid.New().String()
	log := uc.log.With().Str("sale_id", saleID).Logger()

	// ── Validating ────────────────────────────────────────────────────────────
	log.Debug().Str("state", StateValidating).Int("lines", len(in.Lines)).Msg("liquidación iniciada")

	report, err := uc.guard.Revalidate(ctx, in.Lines)
	if err != nil {
		return nil, fmt.Errorf("revalidar carrito: %w", err)
	}
	if !report.Valid {
		log.Info().Str("state", StateAborted).Strs("issues", report.Issues).Msg("carrito rechazado por la guardia")
		return nil, &ValidationError{Issues: report.Issues}
	}

	// Total provisional con precios del oráculo: el pago insuficiente se
	// rechaza aquí, antes de cualquier mutación del ledger.
	provisional, err := uc.provisionalTotal(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.AmountPaid.LessThan(provisional) {
		return nil, domain.ErrPaymentInsufficient
	}

	// ── Allocating ────────────────────────────────────────────────────────────
	log.Debug().Str("state", StateAllocating).Msg("asignando líneas en orden de carrito")

	var allocated []dominv.BatchAllocation // para compensar si algo falla
	items := make([]entity.SaleItem, 0, len(in.Lines))

	for i, line := range in.Lines {
		outcome, err := uc.allocateLine(ctx, line, saleID, in.ActorID)
		if err != nil {
			uc.abort(ctx, log, saleID, in.ActorID, allocated, i, err)
			return nil, err
		}
		allocated = append(allocated, outcome.Allocations...)

		item := entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    saleID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		for _, a := range outcome.Allocations {
			item.Allocations = append(item.Allocations, entity.SaleAllocation{
				ID:         uuid.New().String(),
				SaleItemID: item.ID,
				BatchID:    a.BatchID,
				Quantity:   a.Quantity,
				UnitPrice:  a.UnitPrice,
			})
		}
		items = append(items, item)
	}

	// ── Totales definitivos con los precios capturados en la asignación ──────
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Subtotal())
	}
	total := subtotal.Sub(in.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if in.AmountPaid.LessThan(total) {
		// El precio vigente subió entre el chequeo provisional y la
		// asignación (cambió el lote más próximo). Revertir y abortar.
		uc.abort(ctx, log, saleID, in.ActorID, allocated, len(in.Lines), domain.ErrPaymentInsufficient)
		return nil, domain.ErrPaymentInsufficient
	}
	change := in.AmountPaid.Sub(total)

	now := uc.clock.Now()
	sale := &entity.SaleTransaction{
		ID:            saleID,
		CustomerRef:   in.CustomerRef,
		Items:         items,
		Subtotal:      subtotal,
		Discount:      in.Discount,
		Total:         total,
		AmountPaid:    in.AmountPaid,
		Change:        change,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		CreatedBy:     in.ActorID,
	}

	// ── Committed ─────────────────────────────────────────────────────────────
	err = uc.saleTx.RunSale(ctx, func(saleRepo repository.SaleRepository) error {
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for i := range sale.Items {
			if err := saleRepo.CreateItem(&sale.Items[i]); err != nil {
				return err
			}
			for j := range sale.Items[i].Allocations {
				if err := saleRepo.CreateAllocation(&sale.Items[i].Allocations[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		uc.abort(ctx, log, saleID, in.ActorID, allocated, len(in.Lines), err)
		return nil, fmt.Errorf("persistir venta: %w", err)
	}

	log.Info().Str("state", StateCommitted).Str("total", total.String()).Msg("venta comprometida")
	uc.publisher.Publish(ctx, event.NewSaleCommitted(saleID, total, now))
	return sale, nil
}

// allocateLine selecciona y asigna una línea con exactamente un reintento
// automático ante carrera perdida: re-selecciona contra estado fresco y
// re-intenta una vez; la segunda derrota sube al caller como parada dura,
// para no entrar en livelock bajo contención sostenida.
func (uc *SettlementUseCase) allocateLine(ctx context.Context, line CartLine, saleID, actorID string) (*appinv.AllocationOutcome, error) {
	plan, err := uc.allocator.Plan(ctx, line.ProductID, line.Quantity)
	if err != nil {
		return nil, err
	}
	if !plan.Satisfied() {
		return nil, domain.ErrInsufficientStock
	}

	outcome, err := uc.allocator.Allocate(ctx, plan, saleID, actorID)
	if err == nil {
		return outcome, nil
	}
	if !errors.Is(err, domain.ErrBatchRaceLost) && !errors.Is(err, domain.ErrBatchNotFound) {
		return nil, err
	}

	// Único reintento: plan fresco contra el ledger ya mutado por el rival.
	plan, err = uc.allocator.Plan(ctx, line.ProductID, line.Quantity)
	if err != nil {
		return nil, err
	}
	if !plan.Satisfied() {
		return nil, domain.ErrInsufficientStock
	}
	return uc.allocator.Allocate(ctx, plan, saleID, actorID)
}

// provisionalTotal total estimado con los precios vigentes del oráculo.
func (uc *SettlementUseCase) provisionalTotal(ctx context.Context, in SettleInput) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		price, err := uc.prices.CurrentPrice(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNoActiveBatch) {
				return decimal.Zero, domain.ErrInsufficientStock
			}
			return decimal.Zero, err
		}
		subtotal = subtotal.Add(decimal.NewFromInt(line.Quantity).Mul(price))
	}
	total := subtotal.Sub(in.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total, nil
}

// abort compensa todo lo asignado y deja la liquidación en Aborted. Si la
// compensación misma falla solo queda registrarlo a gritos: el ledger
// necesita intervención manual.
func (uc *SettlementUseCase) abort(ctx context.Context, log zerolog.Logger, saleID, actorID string, allocated []dominv.BatchAllocation, failedLine int, cause error) {
	if len(allocated) > 0 {
		if err := uc.allocator.Compensate(ctx, allocated, saleID, actorID); err != nil {
			log.Error().Err(err).Msg("compensación fallida: el ledger requiere intervención manual")
		}
	}
	log.Info().
		Str("state", StateAborted).
		Int("failed_line", failedLine).
		Err(cause).
		Msg("liquidación abortada y compensada")
}
