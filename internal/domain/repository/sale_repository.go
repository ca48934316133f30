package repository

import "github.com/tu-usuario/farmacia-pos/internal/domain/entity"

// SaleRepository puerto de persistencia de ventas comprometidas.
// La cabecera, las líneas y las asignaciones se escriben en la misma
// transacción; una venta nunca queda a medias en la base.
type SaleRepository interface {
	Create(sale *entity.SaleTransaction) error
	CreateItem(item *entity.SaleItem) error
	CreateAllocation(allocation *entity.SaleAllocation) error
	// GetByID obtiene la venta con líneas y asignaciones; nil si no existe.
	GetByID(id string) (*entity.SaleTransaction, error)
}
