// Package inventory contiene la lógica pura del motor de lotes:
// selección FEFO (First-Expire-First-Out) y el plan de asignación.
package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// BatchAllocation una entrada del plan: cuántas unidades tomar de qué lote,
// al precio unitario de ese lote.
type BatchAllocation struct {
	BatchID   string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// AllocationPlan es el resultado efímero de la selección FEFO: se produce,
// se consume una vez por el motor de asignación y se descarta. No se persiste.
type AllocationPlan struct {
	ProductID           string
	Entries             []BatchAllocation
	UnsatisfiedQuantity int64 // > 0 si los lotes se agotaron antes de cubrir lo pedido
}

// Satisfied indica si el plan cubre toda la cantidad solicitada.
func (p *AllocationPlan) Satisfied() bool { return p.UnsatisfiedQuantity == 0 }

// TotalQuantity unidades cubiertas por el plan.
func (p *AllocationPlan) TotalQuantity() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Quantity
	}
	return total
}

// fefoLess define el orden total de consumo: vencimiento ascendente con los
// lotes sin vencimiento al final (se tratan como los de vida más larga);
// empate por fecha de creación ascendente (el recibido primero sale primero).
func fefoLess(a, b *entity.Batch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return a.CreatedAt.Before(b.CreatedAt)
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	case a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
}

// SortFEFO ordena los lotes in-place según el orden FEFO. Es estable y
// determinista: dos llamadas sobre el mismo snapshot producen el mismo orden.
func SortFEFO(batches []*entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool { return fefoLess(batches[i], batches[j]) })
}

// SelectBatches arma el plan FEFO para quantityNeeded unidades a partir del
// snapshot de lotes dado. Solo considera lotes asignables (activos, con
// unidades, no vencidos a asOf) y toma greedy min(lote.Quantity, restante)
// en orden FEFO. Es de solo lectura: no muta los lotes.
//
// Si los lotes se agotan antes de cubrir lo pedido, el plan vuelve con
// UnsatisfiedQuantity > 0; decidir qué hacer con un plan parcial es del caller.
func SelectBatches(batches []*entity.Batch, quantityNeeded int64, asOf time.Time) (*AllocationPlan, error) {
	if quantityNeeded <= 0 {
		return nil, domain.ErrInvalidInput
	}

	allocatable := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Allocatable(asOf) {
			allocatable = append(allocatable, b)
		}
	}
	SortFEFO(allocatable)

	plan := &AllocationPlan{}
	if len(allocatable) > 0 {
		plan.ProductID = allocatable[0].ProductID
	}
	remaining := quantityNeeded
	for _, b := range allocatable {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		plan.Entries = append(plan.Entries, BatchAllocation{
			BatchID:   b.ID,
			Quantity:  take,
			UnitPrice: b.UnitPrice,
		})
		remaining -= take
	}
	plan.UnsatisfiedQuantity = remaining
	return plan, nil
}

// AvailableQuantity suma las unidades asignables del snapshot (lotes activos,
// no vencidos a asOf). Es la cantidad que usa la guardia de revalidación.
func AvailableQuantity(batches []*entity.Batch, asOf time.Time) int64 {
	var total int64
	for _, b := range batches {
		if b.Allocatable(asOf) {
			total += b.Quantity
		}
	}
	return total
}

// FirstAllocatable devuelve el lote que FEFO consumiría primero, o nil si no
// hay lotes asignables. Es la base del oráculo de precios: el precio vigente
// de un producto es el precio unitario de este lote.
func FirstAllocatable(batches []*entity.Batch, asOf time.Time) *entity.Batch {
	var first *entity.Batch
	for _, b := range batches {
		if !b.Allocatable(asOf) {
			continue
		}
		if first == nil || fefoLess(b, first) {
			first = b
		}
	}
	return first
}
