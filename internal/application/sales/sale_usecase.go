package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// SaleUseCase consultas de ventas ya comprometidas. Las ventas son
// inmutables: no hay operaciones de edición ni borrado.
type SaleUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	generator   ReceiptPDFGenerator
}

// NewSaleUseCase construye el caso de uso inyectando todas sus dependencias.
func NewSaleUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	generator ReceiptPDFGenerator,
) *SaleUseCase {
	return &SaleUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		generator:   generator,
	}
}

// GetSale recupera una venta con sus líneas y asignaciones de lote.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*entity.SaleTransaction, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// DownloadReceiptPDF recupera la venta, enriquece cada asignación con el
// nombre del producto y el número de lote, y genera el recibo.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe.
func (uc *SaleUseCase) DownloadReceiptPDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}

	lines := make([]ReceiptLineForPDF, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := "Producto " + item.ProductID // fallback
		if product, pErr := uc.productRepo.GetByID(item.ProductID); pErr == nil && product != nil {
			name = product.GenericName
			if product.BrandName != "" {
				name = product.BrandName + " (" + product.GenericName + ")"
			}
		}
		for _, alloc := range item.Allocations {
			batchNumber := alloc.BatchID // fallback
			if batch, bErr := uc.batchRepo.GetByID(alloc.BatchID); bErr == nil && batch != nil {
				batchNumber = batch.BatchNumber
			}
			lines = append(lines, ReceiptLineForPDF{
				ProductName: name,
				BatchNumber: batchNumber,
				Quantity:    alloc.Quantity,
				UnitPrice:   alloc.UnitPrice,
				Subtotal:    decimal.NewFromInt(alloc.Quantity).Mul(alloc.UnitPrice),
			})
		}
	}

	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("recibo_%s.pdf", sale.ID)
	return pdfBytes, filename, nil
}
