package billing

import (
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// lineResolver completa precio y tasa de impuesto de las líneas entrantes:
// precio de catálogo o precio especial del cliente en por cobrar, precio
// indicado o de catálogo en por pagar.
type lineResolver struct {
	productRepo repository.ProductRepository
	pricing     *PricingResolver
	log         *logger.Logger
}

func (r *lineResolver) resolve(family, counterpartyID string, lines []dto.LineItemRequest) ([]LineInput, error) {
	inputs := make([]LineInput, 0, len(lines))
	for i, l := range lines {
		input := LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		if l.TaxRate != nil {
			input.TaxRate = *l.TaxRate
		}

		if l.ProductID == "" {
			if l.Description == "" {
				return nil, domain.Validationf("lines", "línea %d: una línea libre requiere descripción", i+1)
			}
			inputs = append(inputs, input)
			continue
		}

		product, err := r.productRepo.GetByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.Validationf("lines", "línea %d: producto %s no existe", i+1, l.ProductID)
		}
		pid := l.ProductID
		input.ProductID = &pid
		if input.Description == "" {
			input.Description = product.Name
		}
		if l.TaxRate == nil {
			input.TaxRate = product.TaxRate
		}
		if l.UnitPrice.IsZero() {
			if family == entity.FamilyReceivable {
				price, kind, err := r.pricing.ResolvePrice(counterpartyID, l.ProductID, product.Price)
				if err != nil {
					return nil, err
				}
				if kind != entity.DiscountNone {
					r.log.Debug().
						Str("client_id", counterpartyID).
						Str("product_id", l.ProductID).
						Str("discount_kind", kind).
						Msg("precio especial aplicado")
				}
				input.UnitPrice = price
			} else {
				input.UnitPrice = product.Price
			}
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
