package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// ProductRepository define el puerto hacia el subsistema de inventario.
// El motor de facturación solo lee productos y ajusta el contador de stock;
// no es dueño de la semántica del inventario.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// GetByIDForUpdate bloquea la fila del producto (SELECT FOR UPDATE) antes
	// de ajustar stock dentro de una transacción.
	GetByIDForUpdate(id string) (*entity.Product, error)
	// AdjustStock aplica un delta con signo al stock del producto.
	AdjustStock(productID string, delta decimal.Decimal) error
	GetStock(productID string) (decimal.Decimal, error)
}
