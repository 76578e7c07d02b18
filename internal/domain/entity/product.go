package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// Stock es el contador que el motor de facturación descuenta al crear documentos
// por cobrar y repone al anularlos (las cuentas por pagar mueven el signo inverso);
// la semántica del inventario pertenece al subsistema de inventario.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de catálogo
	TaxRate     decimal.Decimal // IVA Costa Rica: 0, 1, 2, 4 o 13 (%)
	CabysCode   string          // código CABYS de 13 dígitos (obligatorio para envío a Hacienda)
	Stock       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
