// Package catalog implementa la administración del catálogo de productos.
// Los productos nunca se eliminan: se archivan, y su historial de lotes y
// movimientos queda intacto.
package catalog

import (
	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pos/internal/application/dto"
	"github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo. El stock no vive aquí: es una
// propiedad derivada de los lotes y se consulta por el módulo de inventario.
type ProductUseCase struct {
	repo  repository.ProductRepository
	clock inventory.Clock
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, clock inventory.Clock) *ProductUseCase {
	return &ProductUseCase{repo: repo, clock: clock}
}

// Create registra un producto nuevo en el catálogo.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.GenericName == "" || in.ReorderThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		GenericName:      in.GenericName,
		BrandName:        in.BrandName,
		Category:         in.Category,
		ReorderThreshold: in.ReorderThreshold,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Deactivate archiva el producto: deja de ser vendible pero conserva su
// historial. Idempotente.
func (uc *ProductUseCase) Deactivate(id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if !product.Active {
		return nil
	}
	return uc.repo.Deactivate(id)
}
