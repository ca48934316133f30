package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// ReceiveStockUseCase registra el ingreso de mercancía: crea el lote
// (quantity = originalQuantity, status active) y su movimiento receipt en la
// misma transacción. Es el único camino de entrada de unidades al ledger.
type ReceiveStockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	clock       Clock
}

// NewReceiveStockUseCase construye el caso de uso.
func NewReceiveStockUseCase(txRunner TxRunner, productRepo repository.ProductRepository, clock Clock) *ReceiveStockUseCase {
	return &ReceiveStockUseCase{txRunner: txRunner, productRepo: productRepo, clock: clock}
}

// ReceiveInput entrada para registrar un lote recibido.
type ReceiveInput struct {
	ProductID    string
	BatchNumber  string
	Quantity     int64
	ExpiryDate   *time.Time // nil = no vence
	UnitCost     decimal.Decimal
	UnitPrice    decimal.Decimal
	SupplierName string
	ActorID      string
}

// Receive valida y persiste el lote. El número de lote es único por producto
// (violación → ErrDuplicate). Se rechazan lotes que ya llegan vencidos.
func (uc *ReceiveStockUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.Batch, error) {
	now := uc.clock.Now()

	if in.ProductID == "" || in.BatchNumber == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.ExpiryDate != nil && in.ExpiryDate.Before(now) {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrNotFound
	}

	batch := &entity.Batch{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		BatchNumber:      in.BatchNumber,
		Quantity:         in.Quantity,
		OriginalQuantity: in.Quantity,
		ExpiryDate:       in.ExpiryDate,
		UnitCost:         in.UnitCost,
		UnitPrice:        in.UnitPrice,
		SupplierName:     in.SupplierName,
		Status:           entity.BatchStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := batchRepo.Create(batch); err != nil {
			return err
		}
		// Movimiento receipt: con él, quantity = Σ delta para todo lote.
		return movRepo.Create(&entity.StockMovement{
			BatchID:     batch.ID,
			Delta:       in.Quantity,
			Reason:      entity.MovementReasonReceipt,
			ReferenceID: batch.ID,
			ActorID:     in.ActorID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}
