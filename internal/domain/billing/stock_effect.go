package billing

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// StockEffect dirección del ajuste de inventario implicado por un documento.
// El signo se resuelve una sola vez por familia y acción; ningún call site
// vuelve a derivarlo.
type StockEffect int

const (
	// StockConsume descuenta inventario (venta sale de bodega).
	StockConsume StockEffect = iota
	// StockRestore repone inventario (recepción de compra, o reverso por anulación).
	StockRestore
)

// String para logs y auditoría.
func (e StockEffect) String() string {
	if e == StockConsume {
		return "CONSUME"
	}
	return "RESTORE"
}

// Invert devuelve el efecto contrario (anulación).
func (e StockEffect) Invert() StockEffect {
	if e == StockConsume {
		return StockRestore
	}
	return StockConsume
}

// Delta convierte una cantidad de línea en el delta con signo a aplicar al stock.
func (e StockEffect) Delta(qty decimal.Decimal) decimal.Decimal {
	if e == StockConsume {
		return qty.Neg()
	}
	return qty
}

// StockEffectOnCreate efecto al crear un documento de la familia dada:
// una venta (por cobrar) consume inventario; recibir mercadería de un proveedor
// (por pagar) lo incrementa.
func StockEffectOnCreate(family string) StockEffect {
	if family == entity.FamilyPayable {
		return StockRestore
	}
	return StockConsume
}

// StockEffectOnAnnul efecto al anular: el inverso exacto del de creación.
func StockEffectOnAnnul(family string) StockEffect {
	return StockEffectOnCreate(family).Invert()
}
