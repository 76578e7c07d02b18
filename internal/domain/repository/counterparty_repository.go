package repository

import "github.com/tu-usuario/facturacion-pro/internal/domain/entity"

// ClientRepository define el puerto de persistencia para clientes.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error)
}

// ProviderRepository define el puerto de persistencia para proveedores.
type ProviderRepository interface {
	Create(provider *entity.Provider) error
	GetByID(id string) (*entity.Provider, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Provider, error)
}

// CompanyRepository define el puerto de persistencia para el perfil emisor.
type CompanyRepository interface {
	GetByID(id string) (*entity.Company, error)
}
