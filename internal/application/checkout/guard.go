// Package checkout implementa la capa de venta: la guardia de revalidación
// de carrito y la liquidación (settlement) que convierte un carrito validado
// en una venta comprometida, todo-o-nada.
package checkout

import (
	"context"
	"fmt"

	appinv "github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	dominv "github.com/tu-usuario/farmacia-pos/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// CartLine una línea de carrito tal como la envía la caja.
type CartLine struct {
	ProductID string
	Quantity  int64
}

// ValidationReport resultado de la revalidación: válido o la lista de
// problemas encontrados, uno por línea conflictiva.
type ValidationReport struct {
	Valid  bool
	Issues []string
}

// StockGuard re-lee el estado del ledger justo antes del cobro para cerrar
// la ventana entre armar el carrito y pagar. Lectura pura: no reserva ni
// bloquea nada — la ventana se estrecha, no se elimina, y el caller igual
// debe manejar el fallo de asignación en el commit.
type StockGuard struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	clock       appinv.Clock
}

// NewStockGuard construye la guardia.
func NewStockGuard(productRepo repository.ProductRepository, batchRepo repository.BatchRepository, clock appinv.Clock) *StockGuard {
	return &StockGuard{productRepo: productRepo, batchRepo: batchRepo, clock: clock}
}

// Revalidate verifica cada línea contra el estado actual: el producto existe
// y sigue activo, y la cantidad pedida no supera el stock asignable vigente.
func (g *StockGuard) Revalidate(ctx context.Context, lines []CartLine) (*ValidationReport, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := g.clock.Now()
	report := &ValidationReport{Valid: true}

	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			report.addIssue(fmt.Sprintf("línea inválida: producto %q, cantidad %d", line.ProductID, line.Quantity))
			continue
		}
		product, err := g.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			report.addIssue(fmt.Sprintf("producto %s: ya no existe", line.ProductID))
			continue
		}
		if !product.Active {
			report.addIssue(fmt.Sprintf("producto %s: archivado desde que se armó el carrito", line.ProductID))
			continue
		}
		batches, err := g.batchRepo.ListAllocatable(line.ProductID)
		if err != nil {
			return nil, err
		}
		available := dominv.AvailableQuantity(batches, now)
		if line.Quantity > available {
			report.addIssue(fmt.Sprintf("producto %s: solicitadas %d unidades, disponibles %d", line.ProductID, line.Quantity, available))
		}
	}
	return report, nil
}

func (r *ValidationReport) addIssue(issue string) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}
