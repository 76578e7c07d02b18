package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment representa un abono aplicado a un documento.
// Invariantes: la suma de abonos nunca supera el total original del documento;
// un abono individual nunca supera el saldo pendiente al momento de registrarlo.
type Payment struct {
	ID         string
	DocumentID string
	Date       time.Time
	Amount     decimal.Decimal
	Method     string // medio de pago (pkg/hacienda: 01 efectivo, 02 tarjeta, ...)
	Currency   string
	Reference  string // nota opcional (nº de transferencia, cheque, etc.)
	CreatedBy  string
	CreatedAt  time.Time
}
