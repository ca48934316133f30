package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
// Las ventas son inmutables una vez escritas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera de la venta.
func (r *SaleRepo) Create(sale *entity.SaleTransaction) error {
	query := `
		INSERT INTO sales (id, customer_ref, subtotal, discount, total, amount_paid, change, payment_method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.CustomerRef, sale.Subtotal, sale.Discount, sale.Total,
		sale.AmountPaid, sale.Change, sale.PaymentMethod, sale.CreatedAt, sale.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, item.ID, item.SaleID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// CreateAllocation inserta una asignación de lote de una línea.
func (r *SaleRepo) CreateAllocation(a *entity.SaleAllocation) error {
	query := `
		INSERT INTO sale_allocations (id, sale_item_id, batch_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, a.ID, a.SaleItemID, a.BatchID, a.Quantity, a.UnitPrice)
	if err != nil {
		return fmt.Errorf("create sale allocation: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con líneas y asignaciones; nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.SaleTransaction, error) {
	query := `
		SELECT id, customer_ref, subtotal, discount, total, amount_paid, change, payment_method, created_at, created_by
		FROM sales WHERE id = $1`
	var s entity.SaleTransaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CustomerRef, &s.Subtotal, &s.Discount, &s.Total,
		&s.AmountPaid, &s.Change, &s.PaymentMethod, &s.CreatedAt, &s.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.itemsBySale(id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func (r *SaleRepo) itemsBySale(saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity
		FROM sale_items WHERE sale_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var item entity.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sale items rows: %w", err)
	}

	for i := range items {
		allocs, err := r.allocationsByItem(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Allocations = allocs
	}
	return items, nil
}

func (r *SaleRepo) allocationsByItem(itemID string) ([]entity.SaleAllocation, error) {
	query := `
		SELECT id, sale_item_id, batch_id, quantity, unit_price
		FROM sale_allocations WHERE sale_item_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list sale allocations: %w", err)
	}
	defer rows.Close()

	var allocs []entity.SaleAllocation
	for rows.Next() {
		var a entity.SaleAllocation
		if err := rows.Scan(&a.ID, &a.SaleItemID, &a.BatchID, &a.Quantity, &a.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale allocation: %w", err)
		}
		allocs = append(allocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sale allocations rows: %w", err)
	}
	return allocs, nil
}
