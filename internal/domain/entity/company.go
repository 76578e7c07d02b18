package entity

import "time"

// Company representa la empresa emisora (perfil fiscal para la clave y el
// payload del comprobante electrónico).
type Company struct {
	ID                   string
	Name                 string
	IdentificationType   string
	IdentificationNumber string // cédula del emisor; se rellena a 12 dígitos en la clave
	Sucursal             string // 3 dígitos del consecutivo (ej: "001")
	Terminal             string // 5 dígitos del consecutivo (ej: "00001")
	Email                string
	Phone                string
	Province             string
	Canton               string
	District             string
	Address              string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
