package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// Totals agregados monetarios de un documento, redondeados a 2 decimales en el
// punto de agregación (no por paso intermedio) para no acumular error de redondeo.
type Totals struct {
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// LineInput entrada ya resuelta (precio y tasa definitivos) para construir una línea.
type LineInput struct {
	ProductID   *string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje (13 = 13%)
}

// BuildLines valida las entradas, construye las líneas con sus montos y
// recalcula los agregados del documento desde el juego completo de líneas.
// No existe camino incremental: el agregado es siempre función pura del juego
// de líneas actual (quitar una línea = volver a llamar con el juego nuevo).
//
// Convención de impuestos por familia:
//   - RECEIVABLE: impuesto por línea con la tasa de cada línea.
//   - PAYABLE: impuesto a nivel documento con docTaxRate sobre la base sumada.
func BuildLines(family, documentID string, docTaxRate decimal.Decimal, inputs []LineInput) ([]*entity.LineItem, Totals, error) {
	if len(inputs) == 0 {
		return nil, Totals{}, domain.Validationf("lines", "el documento debe tener al menos una línea")
	}

	lines := make([]*entity.LineItem, 0, len(inputs))
	var subtotal, taxTotal decimal.Decimal

	for i, in := range inputs {
		if in.Quantity.IsNegative() {
			return nil, Totals{}, domain.Validationf("lines", "línea %d: la cantidad debe ser positiva, se recibió %s", i+1, in.Quantity)
		}
		if in.UnitPrice.IsNegative() {
			return nil, Totals{}, domain.Validationf("lines", "línea %d: el precio unitario no puede ser negativo, se recibió %s", i+1, in.UnitPrice)
		}
		if in.TaxRate.IsNegative() {
			return nil, Totals{}, domain.Validationf("lines", "línea %d: la tasa de impuesto no puede ser negativa, se recibió %s", i+1, in.TaxRate)
		}

		line := &entity.LineItem{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			ProductID:   in.ProductID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
		}

		// Cantidad cero: placeholder previo a eliminación; no aporta a totales
		// ni mueve inventario, pero se conserva la línea.
		if in.Quantity.IsZero() {
			line.BaseAmount = decimal.Zero
			line.TaxAmount = decimal.Zero
			line.LineTotal = decimal.Zero
			lines = append(lines, line)
			continue
		}

		line.BaseAmount = in.Quantity.Mul(in.UnitPrice)
		if family == entity.FamilyReceivable {
			line.TaxAmount = line.BaseAmount.Mul(in.TaxRate).Div(decimal.NewFromInt(100))
		} else {
			// Por pagar: el impuesto se calcula a nivel de documento.
			line.TaxAmount = decimal.Zero
		}
		line.LineTotal = line.BaseAmount.Add(line.TaxAmount)

		subtotal = subtotal.Add(line.BaseAmount)
		taxTotal = taxTotal.Add(line.TaxAmount)
		lines = append(lines, line)
	}

	if family == entity.FamilyPayable {
		if docTaxRate.IsNegative() {
			return nil, Totals{}, domain.Validationf("tax_rate", "la tasa de impuesto del documento no puede ser negativa: %s", docTaxRate)
		}
		taxTotal = subtotal.Mul(docTaxRate).Div(decimal.NewFromInt(100))
	}

	// Redondeo a 2 decimales únicamente aquí, en la agregación.
	totals := Totals{
		Subtotal: subtotal.Round(2),
		TaxTotal: taxTotal.Round(2),
	}
	totals.GrandTotal = totals.Subtotal.Add(totals.TaxTotal)
	return lines, totals, nil
}

// HasBillableLine indica si al menos una línea tiene cantidad positiva
// (un documento compuesto solo de placeholders no se puede emitir).
func HasBillableLine(lines []*entity.LineItem) bool {
	for _, l := range lines {
		if l.Quantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
