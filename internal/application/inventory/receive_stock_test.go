package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// fakeProductRepo catálogo en memoria, solo lo que necesita el caso de uso.
type fakeProductRepo struct {
	products map[string]*entity.Product
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Deactivate(id string) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}
func (r *fakeProductRepo) ListBelowReorderThreshold() ([]repository.ReorderItem, error) {
	return nil, nil
}

func catalogoCon(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func productoActivo(id string) *entity.Product {
	return &entity.Product{ID: id, GenericName: "Ibuprofeno", BrandName: "Advil", Active: true}
}

// El ingreso crea el lote activo con quantity = originalQuantity y su
// movimiento receipt, dejando la conservación en pie desde el día cero.
func TestReceive_CreaLoteYMovimientoReceipt(t *testing.T) {
	ledger := newFakeLedger()
	uc := appinv.NewReceiveStockUseCase(&fakeTxRunner{ledger}, catalogoCon(productoActivo("prod-1")), &fakeClock{at: ahora})

	batch, err := uc.Receive(context.Background(), appinv.ReceiveInput{
		ProductID:    "prod-1",
		BatchNumber:  "LOTE-001",
		Quantity:     50,
		ExpiryDate:   venceEl(2026, 1, 1),
		UnitCost:     decimal.NewFromInt(3),
		UnitPrice:    decimal.NewFromInt(5),
		SupplierName: "Droguería Central",
		ActorID:      "bodeguero-1",
	})
	require.NoError(t, err)

	guardado := ledger.batch(batch.ID)
	require.NotNil(t, guardado)
	assert.Equal(t, entity.BatchStatusActive, guardado.Status)
	assert.Equal(t, int64(50), guardado.Quantity)
	assert.Equal(t, int64(50), guardado.OriginalQuantity)

	require.Len(t, ledger.movements, 1)
	mov := ledger.movements[0]
	assert.Equal(t, entity.MovementReasonReceipt, mov.Reason)
	assert.Equal(t, int64(50), mov.Delta)
	assert.Equal(t, batch.ID, mov.ReferenceID)
	assert.Equal(t, guardado.Quantity, ledger.sumDeltas(batch.ID), "conservación desde el ingreso")
}

// Entradas inválidas: cantidad no positiva, vencido al llegar, producto
// inexistente o inactivo.
func TestReceive_Validaciones(t *testing.T) {
	ledger := newFakeLedger()
	inactivo := productoActivo("prod-2")
	inactivo.Active = false
	uc := appinv.NewReceiveStockUseCase(&fakeTxRunner{ledger}, catalogoCon(productoActivo("prod-1"), inactivo), &fakeClock{at: ahora})

	base := appinv.ReceiveInput{
		ProductID:   "prod-1",
		BatchNumber: "LOTE-001",
		Quantity:    10,
		UnitCost:    decimal.NewFromInt(3),
		UnitPrice:   decimal.NewFromInt(5),
	}

	cantidadCero := base
	cantidadCero.Quantity = 0
	_, err := uc.Receive(context.Background(), cantidadCero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	yaVencido := base
	yaVencido.ExpiryDate = venceEl(2025, 1, 1)
	_, err = uc.Receive(context.Background(), yaVencido)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un lote que llega vencido se rechaza")

	sinProducto := base
	sinProducto.ProductID = "prod-999"
	_, err = uc.Receive(context.Background(), sinProducto)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	productoInactivo := base
	productoInactivo.ProductID = "prod-2"
	_, err = uc.Receive(context.Background(), productoInactivo)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, ledger.movements, "ninguna validación fallida debe tocar el ledger")
}
