// Package hacienda: construcción de la clave numérica y el consecutivo del
// comprobante electrónico según el anexo v4.3 de Hacienda (Costa Rica).
//
// Clave (50 dígitos): país(3) + día(2) + mes(2) + año(2) + cédula emisor(12) +
// consecutivo(20) + situación(1) + código de seguridad(8).
// Consecutivo (20 dígitos): sucursal(3) + terminal(5) + tipo documento(2) +
// secuencia(10).
package hacienda

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// CountryCode código de país fijo para Costa Rica en la clave.
const CountryCode = "506"

// Longitudes fijas de los campos de la clave.
const (
	ClaveLength       = 50
	ConsecutivoLength = 20
	emitterIDLength   = 12
	securityLength    = 8
	sucursalLength    = 3
	terminalLength    = 5
	sequenceLength    = 10
)

// ConsecutivoParams campos del consecutivo de 20 dígitos.
type ConsecutivoParams struct {
	Sucursal string // hasta 3 dígitos, se rellena con ceros
	Terminal string // hasta 5 dígitos
	DocType  string // 2 dígitos (pkg/hacienda: "01" factura, "08" compra, ...)
	Sequence int64  // secuencia por (sucursal, terminal, tipo); > 0
}

// ClaveParams campos de la clave de 50 dígitos.
type ClaveParams struct {
	IssueDate    time.Time
	EmitterID    string // cédula del emisor, solo dígitos, se rellena a 12
	Consecutivo  string // resultado de BuildConsecutivo
	Situacion    string // "1" normal, "2" contingencia, "3" sin internet
	SecurityCode string // 8 dígitos elegidos por el emisor
}

// BuildConsecutivo arma el consecutivo de 20 dígitos con ceros a la izquierda.
func BuildConsecutivo(p ConsecutivoParams) (string, error) {
	sucursal, err := padDigits("sucursal", p.Sucursal, sucursalLength)
	if err != nil {
		return "", err
	}
	terminal, err := padDigits("terminal", p.Terminal, terminalLength)
	if err != nil {
		return "", err
	}
	if len(p.DocType) != 2 || !allDigits(p.DocType) {
		return "", fmt.Errorf("hacienda: tipo de documento debe ser 2 dígitos: %q", p.DocType)
	}
	if p.Sequence <= 0 {
		return "", fmt.Errorf("hacienda: secuencia debe ser positiva: %d", p.Sequence)
	}
	sequence := fmt.Sprintf("%0*d", sequenceLength, p.Sequence)
	if len(sequence) > sequenceLength {
		return "", fmt.Errorf("hacienda: secuencia %d excede %d dígitos", p.Sequence, sequenceLength)
	}
	return sucursal + terminal + p.DocType + sequence, nil
}

// BuildClave arma la clave de 50 dígitos. Determinista: mismos parámetros,
// misma clave.
func BuildClave(p ClaveParams) (string, error) {
	if p.IssueDate.IsZero() {
		return "", fmt.Errorf("hacienda: fecha de emisión es obligatoria")
	}
	emitter, err := padDigits("cédula emisor", p.EmitterID, emitterIDLength)
	if err != nil {
		return "", err
	}
	if len(p.Consecutivo) != ConsecutivoLength || !allDigits(p.Consecutivo) {
		return "", fmt.Errorf("hacienda: consecutivo debe tener %d dígitos: %q", ConsecutivoLength, p.Consecutivo)
	}
	switch p.Situacion {
	case "1", "2", "3":
	default:
		return "", fmt.Errorf("hacienda: situación inválida: %q", p.Situacion)
	}
	security, err := padDigits("código de seguridad", p.SecurityCode, securityLength)
	if err != nil {
		return "", err
	}

	clave := CountryCode +
		p.IssueDate.Format("020106") + // DDMMYY
		emitter +
		p.Consecutivo +
		p.Situacion +
		security
	if len(clave) != ClaveLength {
		return "", fmt.Errorf("hacienda: clave generada con longitud %d, esperada %d", len(clave), ClaveLength)
	}
	return clave, nil
}

// padDigits valida que s sea numérico y lo rellena con ceros a la izquierda hasta n.
func padDigits(field, s string, n int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("hacienda: %s es obligatorio", field)
	}
	if !allDigits(s) {
		return "", fmt.Errorf("hacienda: %s debe ser numérico: %q", field, s)
	}
	if len(s) > n {
		return "", fmt.Errorf("hacienda: %s excede %d dígitos: %q", field, n, s)
	}
	return strings.Repeat("0", n-len(s)) + s, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
