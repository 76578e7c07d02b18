package repository

import "github.com/tu-usuario/facturacion-pro/internal/domain/entity"

// PriceOverrideRepository define el puerto de persistencia para precios especiales
// por (cliente, producto).
type PriceOverrideRepository interface {
	Create(o *entity.PriceOverride) error
	Update(o *entity.PriceOverride) error
	Delete(id string) error
	GetByID(id string) (*entity.PriceOverride, error)
	// GetByClientAndProduct devuelve nil, nil si no existe: la ausencia no es error,
	// el resolutor cae al precio de catálogo.
	GetByClientAndProduct(clientID, productID string) (*entity.PriceOverride, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.PriceOverride, error)
}
