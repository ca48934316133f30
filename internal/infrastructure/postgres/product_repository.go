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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create inserta un producto nuevo.
func (r *ProductRepo) Create(p *entity.Product) error {
	query := `
		INSERT INTO products (id, generic_name, brand_name, category, reorder_threshold, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.GenericName, p.BrandName, p.Category, p.ReorderThreshold, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, generic_name, brand_name, category, reorder_threshold, active, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.GenericName, &p.BrandName, &p.Category, &p.ReorderThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// List lista productos con paginación, ordenados por nombre genérico.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, generic_name, brand_name, category, reorder_threshold, active, created_at, updated_at
		FROM products
		ORDER BY generic_name ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.GenericName, &p.BrandName, &p.Category, &p.ReorderThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return out, nil
}

// Deactivate archiva el producto. Los productos nunca se eliminan.
func (r *ProductRepo) Deactivate(id string) error {
	query := `UPDATE products SET active = false, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowReorderThreshold productos activos cuyo stock asignable está en o
// bajo su punto de reorden, con el precio del lote que FEFO tomaría primero.
func (r *ProductRepo) ListBelowReorderThreshold() ([]repository.ReorderItem, error) {
	query := `
		SELECT p.id, p.generic_name, p.brand_name, p.category, p.reorder_threshold,
		       COALESCE(s.stock, 0) AS current_stock,
		       COALESCE(e.unit_price, 0) AS earliest_price
		FROM products p
		LEFT JOIN LATERAL (
			SELECT SUM(b.quantity) AS stock
			FROM batches b
			WHERE b.product_id = p.id AND b.status = 'active' AND b.quantity > 0
			  AND (b.expiry_date IS NULL OR b.expiry_date >= now())
		) s ON true
		LEFT JOIN LATERAL (
			SELECT b.unit_price
			FROM batches b
			WHERE b.product_id = p.id AND b.status = 'active' AND b.quantity > 0
			  AND (b.expiry_date IS NULL OR b.expiry_date >= now())
			ORDER BY b.expiry_date ASC NULLS LAST, b.created_at ASC
			LIMIT 1
		) e ON true
		WHERE p.active AND COALESCE(s.stock, 0) <= p.reorder_threshold
		ORDER BY p.generic_name ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("reorder list: %w", err)
	}
	defer rows.Close()

	var out []repository.ReorderItem
	for rows.Next() {
		var item repository.ReorderItem
		if err := rows.Scan(&item.ProductID, &item.GenericName, &item.BrandName, &item.Category,
			&item.ReorderThreshold, &item.CurrentStock, &item.EarliestPrice); err != nil {
			return nil, fmt.Errorf("scan reorder item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reorder rows: %w", err)
	}
	return out, nil
}
