package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeSaleRepo struct{ sales map[string]*entity.SaleTransaction }

func (r *fakeSaleRepo) Create(*entity.SaleTransaction) error       { return nil }
func (r *fakeSaleRepo) CreateItem(*entity.SaleItem) error          { return nil }
func (r *fakeSaleRepo) CreateAllocation(*entity.SaleAllocation) error { return nil }
func (r *fakeSaleRepo) GetByID(id string) (*entity.SaleTransaction, error) {
	return r.sales[id], nil
}

type fakeProductRepo struct{ products map[string]*entity.Product }

func (r *fakeProductRepo) Create(*entity.Product) error { return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *fakeProductRepo) List(int, int) ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Deactivate(string) error                  { return nil }
func (r *fakeProductRepo) ListBelowReorderThreshold() ([]repository.ReorderItem, error) {
	return nil, nil
}

type fakeBatchRepo struct{ batches map[string]*entity.Batch }

func (r *fakeBatchRepo) Create(*entity.Batch) error { return nil }
func (r *fakeBatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.batches[id], nil
}
func (r *fakeBatchRepo) GetForUpdate(string) (*entity.Batch, error)     { return nil, nil }
func (r *fakeBatchRepo) ListByProduct(string) ([]*entity.Batch, error)  { return nil, nil }
func (r *fakeBatchRepo) ListAllocatable(string) ([]*entity.Batch, error) { return nil, nil }
func (r *fakeBatchRepo) ListActiveExpiredBefore(time.Time) ([]*entity.Batch, error) {
	return nil, nil
}
func (r *fakeBatchRepo) UpdateQuantityAndStatus(string, int64, string) error { return nil }
func (r *fakeBatchRepo) UpdateStatus(string, string) error                   { return nil }

type fakeGenerator struct {
	lines []ReceiptLineForPDF
	fail  error
}

func (g *fakeGenerator) GenerateReceiptPDF(_ context.Context, _ *entity.SaleTransaction, lines []ReceiptLineForPDF) ([]byte, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	g.lines = lines
	return []byte("%PDF-1.7"), nil
}

func ventaDeEjemplo() *entity.SaleTransaction {
	return &entity.SaleTransaction{
		ID: "s1",
		Items: []entity.SaleItem{
			{
				ID:        "i1",
				SaleID:    "s1",
				ProductID: "p1",
				Quantity:  15,
				Allocations: []entity.SaleAllocation{
					{ID: "a1", SaleItemID: "i1", BatchID: "b1", Quantity: 10, UnitPrice: decimal.RequireFromString("5.00")},
					{ID: "a2", SaleItemID: "i1", BatchID: "b2", Quantity: 5, UnitPrice: decimal.RequireFromString("6.00")},
				},
			},
		},
		Subtotal:      decimal.RequireFromString("80.00"),
		Total:         decimal.RequireFromString("80.00"),
		AmountPaid:    decimal.RequireFromString("100.00"),
		Change:        decimal.RequireFromString("20.00"),
		PaymentMethod: entity.PaymentMethodCash,
	}
}

func casoDeUso(sale *entity.SaleTransaction, gen *fakeGenerator) *SaleUseCase {
	sales := map[string]*entity.SaleTransaction{}
	if sale != nil {
		sales[sale.ID] = sale
	}
	return NewSaleUseCase(
		&fakeSaleRepo{sales: sales},
		&fakeProductRepo{products: map[string]*entity.Product{
			"p1": {ID: "p1", GenericName: "Ibuprofeno 400mg", BrandName: "Advil", Active: true},
		}},
		&fakeBatchRepo{batches: map[string]*entity.Batch{
			"b1": {ID: "b1", BatchNumber: "L-2025-001"},
			"b2": {ID: "b2", BatchNumber: "L-2025-002"},
		}},
		gen,
	)
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestGetSale_Existente(t *testing.T) {
	uc := casoDeUso(ventaDeEjemplo(), &fakeGenerator{})

	sale, err := uc.GetSale(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sale.ID)
	assert.Len(t, sale.Items, 1)
}

func TestGetSale_NoExiste(t *testing.T) {
	uc := casoDeUso(nil, &fakeGenerator{})

	_, err := uc.GetSale(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetSale(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDownloadReceiptPDF_EnriqueceLineas(t *testing.T) {
	gen := &fakeGenerator{}
	uc := casoDeUso(ventaDeEjemplo(), gen)

	pdf, filename, err := uc.DownloadReceiptPDF(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "recibo_s1.pdf", filename)

	// Una línea por asignación de lote, con nombre y lote resueltos.
	require.Len(t, gen.lines, 2)
	assert.Equal(t, "Advil (Ibuprofeno 400mg)", gen.lines[0].ProductName)
	assert.Equal(t, "L-2025-001", gen.lines[0].BatchNumber)
	assert.True(t, gen.lines[0].Subtotal.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "L-2025-002", gen.lines[1].BatchNumber)
	assert.True(t, gen.lines[1].Subtotal.Equal(decimal.RequireFromString("30.00")))
}

func TestDownloadReceiptPDF_VentaInexistente(t *testing.T) {
	uc := casoDeUso(nil, &fakeGenerator{})

	_, _, err := uc.DownloadReceiptPDF(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownloadReceiptPDF_GeneradorFalla(t *testing.T) {
	uc := casoDeUso(ventaDeEjemplo(), &fakeGenerator{fail: errors.New("sin fuente")})

	_, _, err := uc.DownloadReceiptPDF(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generación fallida")
}
