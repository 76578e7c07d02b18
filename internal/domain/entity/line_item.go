package entity

import "github.com/shopspring/decimal"

// LineItem representa una línea de detalle de un documento. Pertenece a un único
// documento; no tiene ciclo de vida propio.
//
// Convención de impuestos por familia:
//   - RECEIVABLE: impuesto por línea (TaxAmount = BaseAmount * TaxRate/100).
//   - PAYABLE: impuesto a nivel de documento; TaxAmount de línea queda en cero.
type LineItem struct {
	ID          string
	DocumentID  string
	ProductID   *string // nil = línea libre/servicio; no mueve inventario
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje (13 = 13%)
	BaseAmount  decimal.Decimal // Quantity * UnitPrice
	TaxAmount   decimal.Decimal
	LineTotal   decimal.Decimal // BaseAmount + TaxAmount
}

// HasProduct indica si la línea referencia un producto del inventario.
func (l *LineItem) HasProduct() bool {
	return l.ProductID != nil && *l.ProductID != ""
}
