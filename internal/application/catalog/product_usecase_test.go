package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/farmacia-pos/internal/application/dto"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

type fakeProductRepo struct {
	products    map[string]*entity.Product
	deactivated []string
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}
func (r *fakeProductRepo) Deactivate(id string) error {
	r.deactivated = append(r.deactivated, id)
	r.products[id].Active = false
	return nil
}
func (r *fakeProductRepo) ListBelowReorderThreshold() ([]repository.ReorderItem, error) {
	return nil, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func casoDeUso() (*ProductUseCase, *fakeProductRepo) {
	repo := newFakeProductRepo()
	clock := &fakeClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	return NewProductUseCase(repo, clock), repo
}

func TestCreate_ProductoNuevo(t *testing.T) {
	uc, repo := casoDeUso()

	resp, err := uc.Create(dto.CreateProductRequest{
		GenericName:      "Amoxicilina 500mg",
		BrandName:        "Amoxil",
		Category:         "antibióticos",
		ReorderThreshold: 20,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.Active, "los productos nacen activos")
	assert.Equal(t, int64(20), resp.ReorderThreshold)
	assert.Len(t, repo.products, 1)
}

func TestCreate_NombreObligatorio(t *testing.T) {
	uc, _ := casoDeUso()

	_, err := uc.Create(dto.CreateProductRequest{GenericName: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID_NoExiste(t *testing.T) {
	uc, _ := casoDeUso()

	_, err := uc.GetByID("fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeactivate_EsIdempotente(t *testing.T) {
	uc, repo := casoDeUso()
	resp, err := uc.Create(dto.CreateProductRequest{GenericName: "Loratadina 10mg"})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(resp.ID))
	require.NoError(t, uc.Deactivate(resp.ID), "segunda llamada no falla")
	assert.Len(t, repo.deactivated, 1, "la segunda llamada no vuelve a escribir")
	assert.False(t, repo.products[resp.ID].Active)
}

func TestDeactivate_NoExiste(t *testing.T) {
	uc, _ := casoDeUso()

	assert.ErrorIs(t, uc.Deactivate("fantasma"), domain.ErrNotFound)
}
