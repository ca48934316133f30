package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// CreateProductRequest entrada para registrar un producto en el catálogo.
type CreateProductRequest struct {
	GenericName      string `json:"generic_name" validate:"required,min=1,max=200"`
	BrandName        string `json:"brand_name" validate:"max=200"`
	Category         string `json:"category" validate:"max=100"`
	ReorderThreshold int64  `json:"reorder_threshold" validate:"min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string    `json:"id"`
	GenericName      string    `json:"generic_name"`
	BrandName        string    `json:"brand_name"`
	Category         string    `json:"category"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ReorderItemResponse fila de la lista de reposición.
type ReorderItemResponse struct {
	ProductID        string          `json:"product_id"`
	GenericName      string          `json:"generic_name"`
	BrandName        string          `json:"brand_name"`
	Category         string          `json:"category"`
	ReorderThreshold int64           `json:"reorder_threshold"`
	CurrentStock     int64           `json:"current_stock"`
	EarliestPrice    decimal.Decimal `json:"earliest_price"`
}

// ToProductResponse mapea la entidad a su DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		GenericName:      p.GenericName,
		BrandName:        p.BrandName,
		Category:         p.Category,
		ReorderThreshold: p.ReorderThreshold,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToReorderItemResponse mapea la fila de reposición a su DTO.
func ToReorderItemResponse(r repository.ReorderItem) ReorderItemResponse {
	return ReorderItemResponse{
		ProductID:        r.ProductID,
		GenericName:      r.GenericName,
		BrandName:        r.BrandName,
		Category:         r.Category,
		ReorderThreshold: r.ReorderThreshold,
		CurrentStock:     r.CurrentStock,
		EarliestPrice:    r.EarliestPrice,
	}
}
