// Package hacienda contiene catálogos y validaciones alineados al formato de
// Comprobantes Electrónicos del Ministerio de Hacienda (Costa Rica) v4.3.
package hacienda

import (
	"fmt"
	"unicode"
)

// =============================================================================
// Tipos de documento electrónico (dos dígitos, se usan en el consecutivo y la clave).
// =============================================================================

const (
	DocTypeFacturaElectronica = "01" // Factura electrónica (venta)
	DocTypeNotaDebito         = "02" // Nota de débito electrónica
	DocTypeNotaCredito        = "03" // Nota de crédito electrónica
	DocTypeTiquete            = "04" // Tiquete electrónico
	DocTypeFacturaCompra      = "08" // Factura electrónica de compra (proveedor no emisor)
)

// =============================================================================
// Condición de la venta (nodo CondicionVenta).
// =============================================================================

const (
	CondicionContado     = "01" // Contado: el documento nace pagado
	CondicionCredito     = "02" // Crédito: genera cuenta por cobrar/pagar
	CondicionConsignacion = "03"
	CondicionApartado     = "04"
)

// =============================================================================
// Medios de pago (nodo MedioPago).
// =============================================================================

const (
	MedioEfectivo      = "01"
	MedioTarjeta       = "02"
	MedioCheque        = "03"
	MedioTransferencia = "04"
	MedioRecaudado     = "05"
	MedioOtros         = "99"
)

// ValidPaymentMethodCodes contiene los medios de pago válidos según el anexo v4.3.
var ValidPaymentMethodCodes = map[string]bool{
	MedioEfectivo:      true,
	MedioTarjeta:       true,
	MedioCheque:        true,
	MedioTransferencia: true,
	MedioRecaudado:     true,
	MedioOtros:         true,
}

// =============================================================================
// Situación del comprobante (posición 48 de la clave).
// =============================================================================

const (
	SituacionNormal       = "1"
	SituacionContingencia = "2"
	SituacionSinInternet  = "3"
)

// =============================================================================
// Tipos de identificación fiscal (nodo Identificacion/Tipo).
// =============================================================================

const (
	IDCedulaFisica    = "01"
	IDCedulaJuridica  = "02"
	IDDimex           = "03"
	IDNite            = "04"
)

// ValidIdentificationTypes contiene los tipos de identificación aceptados por Hacienda.
var ValidIdentificationTypes = map[string]bool{
	IDCedulaFisica:   true,
	IDCedulaJuridica: true,
	IDDimex:          true,
	IDNite:           true,
}

// CabysCodeLength longitud fija del código CABYS (Catálogo de Bienes y Servicios).
const CabysCodeLength = 13

// ValidateCabysCode valida que el código CABYS sea numérico y de longitud fija (13 dígitos).
func ValidateCabysCode(code string) error {
	if len(code) != CabysCodeLength {
		return fmt.Errorf("hacienda: código CABYS debe tener %d dígitos, tiene %d", CabysCodeLength, len(code))
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("hacienda: código CABYS debe ser numérico: %q", code)
		}
	}
	return nil
}

// ValidateIdentification valida tipo y número de identificación fiscal.
// Cédula física: 9 dígitos; jurídica: 10; DIMEX: 11 o 12; NITE: 10.
func ValidateIdentification(idType, number string) error {
	if !ValidIdentificationTypes[idType] {
		return fmt.Errorf("hacienda: tipo de identificación desconocido: %q", idType)
	}
	for _, r := range number {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("hacienda: identificación debe ser numérica: %q", number)
		}
	}
	n := len(number)
	switch idType {
	case IDCedulaFisica:
		if n != 9 {
			return fmt.Errorf("hacienda: cédula física debe tener 9 dígitos, tiene %d", n)
		}
	case IDCedulaJuridica:
		if n != 10 {
			return fmt.Errorf("hacienda: cédula jurídica debe tener 10 dígitos, tiene %d", n)
		}
	case IDDimex:
		if n != 11 && n != 12 {
			return fmt.Errorf("hacienda: DIMEX debe tener 11 o 12 dígitos, tiene %d", n)
		}
	case IDNite:
		if n != 10 {
			return fmt.Errorf("hacienda: NITE debe tener 10 dígitos, tiene %d", n)
		}
	}
	return nil
}
