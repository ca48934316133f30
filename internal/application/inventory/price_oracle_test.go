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
)

// Determinismo de precio: con B1 (vence 2026-03-01, precio 10) y B2
// (vence 2026-01-01, precio 8), el precio vigente es 8; al agotarse B2 pasa a 10.
func TestCurrentPrice_SigueAlLoteQueVencePrimero(t *testing.T) {
	b1 := loteActivo("b1", 10, venceEl(2026, 3, 1), 10)
	b2 := loteActivo("b2", 10, venceEl(2026, 1, 1), 8)
	ledger := newFakeLedger(b1, b2)
	oracle := appinv.NewPriceOracle(&fakeBatchRepo{ledger}, &fakeClock{at: ahora})

	price, err := oracle.CurrentPrice(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(8)), "debe regir el precio del lote que vence primero")

	// B2 se agota: el precio vigente pasa al siguiente lote del orden FEFO.
	ledger.batch("b2").Quantity = 0
	ledger.batch("b2").Status = entity.BatchStatusDepleted

	price, err = oracle.CurrentPrice(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))
}

// La cuarentena del lote más próximo también desplaza el precio: el oráculo
// no cachea, cada lectura refleja el pool vigente.
func TestCurrentPrice_CuarentenaDesplazaElPrecio(t *testing.T) {
	b1 := loteActivo("b1", 10, venceEl(2026, 3, 1), 10)
	b2 := loteActivo("b2", 10, venceEl(2026, 1, 1), 8)
	ledger := newFakeLedger(b1, b2)
	oracle := appinv.NewPriceOracle(&fakeBatchRepo{ledger}, &fakeClock{at: ahora})

	ledger.batch("b2").Status = entity.BatchStatusQuarantined

	price, err := oracle.CurrentPrice(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))
}

// Sin lotes asignables el oráculo no inventa un precio.
func TestCurrentPrice_SinLotesActivos(t *testing.T) {
	vencido := loteActivo("b1", 10, venceEl(2025, 1, 1), 10)
	ledger := newFakeLedger(vencido)
	oracle := appinv.NewPriceOracle(&fakeBatchRepo{ledger}, &fakeClock{at: ahora})

	_, err := oracle.CurrentPrice(context.Background(), "prod-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveBatch)

	_, err = oracle.CurrentPrice(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
