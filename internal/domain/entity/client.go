package entity

import "time"

// Client representa un cliente de la empresa (cuentas por cobrar).
// Los campos de identificación fiscal son obligatorios para el envío del
// comprobante electrónico; el adaptador de Hacienda los valida antes de armar
// el payload.
type Client struct {
	ID                   string
	CompanyID            string
	Name                 string
	IdentificationType   string // pkg/hacienda: 01 física, 02 jurídica, 03 DIMEX, 04 NITE
	IdentificationNumber string
	Email                string
	Phone                string
	Province             string
	Canton               string
	District             string
	Address              string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
