package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuento resueltos por el resolutor de precios.
const (
	DiscountNone       = "NONE"
	DiscountFixedPrice = "FIXED_PRICE"
	DiscountPercentage = "PERCENTAGE"
)

// PriceOverride asocia (cliente, producto) a un precio fijo o un porcentaje de
// descuento sobre el precio de catálogo. Si ambos están presentes gana el precio
// fijo. Se crea y edita de forma independiente; el resolutor solo la consulta.
type PriceOverride struct {
	ID          string
	CompanyID   string
	ClientID    string
	ProductID   string
	FixedPrice  decimal.Decimal // > 0 para aplicar
	DiscountPct decimal.Decimal // porcentaje (20 = 20%); > 0 para aplicar
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
