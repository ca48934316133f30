package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// ReorderItem fila de la lista de reposición: un producto cuyo stock asignable
// está en o por debajo de su punto de reorden.
type ReorderItem struct {
	ProductID        string
	GenericName      string
	BrandName        string
	Category         string
	ReorderThreshold int64
	CurrentStock     int64           // Σ quantity de lotes activos no vencidos
	EarliestPrice    decimal.Decimal // precio del lote que FEFO tomaría primero (0 si no hay)
}

// ProductRepository puerto de persistencia del catálogo.
type ProductRepository interface {
	Create(product *entity.Product) error
	// GetByID obtiene un producto por ID; nil si no existe.
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	// Deactivate desactiva el producto (los productos nunca se eliminan).
	Deactivate(id string) error
	// ListBelowReorderThreshold productos con stock asignable <= punto de reorden.
	ListBelowReorderThreshold() ([]ReorderItem, error)
}
