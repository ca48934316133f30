// Package sales implementa las consultas de ventas comprometidas y la
// generación del recibo de caja en PDF.
package sales

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// ReceiptLineForPDF línea del recibo enriquecida para impresión: una fila por
// asignación de lote, con nombre de producto y número de lote resueltos.
type ReceiptLineForPDF struct {
	ProductName string
	BatchNumber string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptPDFGenerator genera la representación imprimible del recibo de venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.SaleTransaction, lines []ReceiptLineForPDF) ([]byte, error)
}
