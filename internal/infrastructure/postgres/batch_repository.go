package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, batch_number, quantity, original_quantity,
	expiry_date, unit_cost, unit_price, supplier_name, status, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, product_id, batch_number, quantity, original_quantity,
			expiry_date, unit_cost, unit_price, supplier_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, batch.BatchNumber, batch.Quantity, batch.OriginalQuantity,
		batch.ExpiryDate, batch.UnitCost, batch.UnitPrice, batch.SupplierName, batch.Status,
		batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; nil si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get batch")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE). Es la
// re-lectura en commit del motor de asignación.
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get batch for update")
}

// ListByProduct lista todos los lotes de un producto, del más próximo a
// vencer al más lejano (NULL al final).
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE product_id = $1
		ORDER BY expiry_date ASC NULLS LAST, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows, "list batches")
}

// ListAllocatable lista los lotes activos con unidades de un producto.
// El filtro de vencimiento y el orden FEFO son del dominio, no del SQL.
func (r *BatchRepo) ListAllocatable(productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE product_id = $1 AND status = 'active' AND quantity > 0`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list allocatable batches: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows, "list allocatable batches")
}

// ListActiveExpiredBefore lista lotes activos vencidos antes de asOf,
// bloqueando las filas (para el sweeper).
func (r *BatchRepo) ListActiveExpiredBefore(asOf time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1
		ORDER BY expiry_date ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, asOf)
	if err != nil {
		return nil, fmt.Errorf("list expired batches: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows, "list expired batches")
}

// UpdateQuantityAndStatus actualiza cantidad y estado de un lote.
func (r *BatchRepo) UpdateQuantityAndStatus(id string, quantity int64, status string) error {
	query := `UPDATE batches SET quantity = $2, status = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity, status)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

// UpdateStatus actualiza solo el estado.
func (r *BatchRepo) UpdateStatus(id string, status string) error {
	query := `UPDATE batches SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *BatchRepo) scanOne(row pgx.Row, op string) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.OriginalQuantity,
		&b.ExpiryDate, &b.UnitCost, &b.UnitPrice, &b.SupplierName, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

func (r *BatchRepo) scanMany(rows pgx.Rows, op string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.OriginalQuantity,
			&b.ExpiryDate, &b.UnitCost, &b.UnitPrice, &b.SupplierName, &b.Status,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}
