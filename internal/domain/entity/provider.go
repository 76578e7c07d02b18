package entity

import "time"

// Provider representa un proveedor de la empresa (cuentas por pagar).
type Provider struct {
	ID                   string
	CompanyID            string
	Name                 string
	IdentificationType   string
	IdentificationNumber string
	Email                string
	Phone                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
