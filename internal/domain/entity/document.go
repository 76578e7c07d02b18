package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Familias de documento: cuentas por cobrar (factura a cliente) y por pagar (factura de proveedor).
const (
	FamilyReceivable = "RECEIVABLE"
	FamilyPayable    = "PAYABLE"
)

// Estados del ciclo de vida de un documento.
const (
	StatePendiente = "PENDIENTE" // creado, sin pagos
	StateParcial   = "PARCIAL"   // con abonos, saldo entre epsilon y total
	StatePagada    = "PAGADA"    // saldo <= epsilon
	StateVencida   = "VENCIDA"   // derivado: due_date < hoy y estado PENDIENTE/PARCIAL
	StateAnulada   = "ANULADA"   // terminal; nunca se borra físicamente
)

// Condiciones de pago.
const (
	TermsContado = "CONTADO" // nace PAGADA con saldo cero y pago implícito
	TermsCredito = "CREDITO"
)

// Estados de envío del comprobante electrónico a Hacienda.
// Independientes del estado de pago: un documento puede estar PAGADA localmente
// con el envío aún PENDIENTE o RECHAZADO.
const (
	SubmissionSinEnviar = "SIN_ENVIAR"
	SubmissionPendiente = "PENDIENTE"
	SubmissionEnviado   = "ENVIADO"
	SubmissionAceptado  = "ACEPTADO"
	SubmissionRechazado = "RECHAZADO"
	SubmissionError     = "ERROR"
)

// Document representa la cabecera de una factura (por cobrar) o factura de
// proveedor (por pagar). Las dos familias comparten forma; Family decide la
// convención de impuestos y el signo de los ajustes de inventario.
type Document struct {
	ID             string
	CompanyID      string
	Family         string
	CounterpartyID string     // cliente (RECEIVABLE) o proveedor (PAYABLE)
	IssueDate      time.Time
	DueDate        *time.Time // nil para condición de contado
	Terms          string
	Currency       string          // pass-through, por defecto CRC
	TaxRate        decimal.Decimal // tasa a nivel de documento; la usan las cuentas por pagar
	Subtotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal
	Balance        decimal.Decimal // saldo pendiente; solo lo mutan ledger, ajuste de débito y anulación
	State          string
	Description    string

	// Campos fiscales (solo familia RECEIVABLE).
	Clave            string // clave numérica de 50 dígitos
	Consecutivo      string // consecutivo de 20 dígitos
	SubmissionStatus string
	SubmittedAt      *time.Time
	AuthorityRef     string // referencia devuelta por Hacienda tras el envío
	SubmissionErrors string // mensajes de rechazo (texto plano o JSON)

	Version   int // bloqueo optimista sobre el saldo
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal indica si el documento está en estado terminal.
func (d *Document) IsTerminal() bool {
	return d.State == StateAnulada
}

// IsReceivable indica si el documento es una cuenta por cobrar.
func (d *Document) IsReceivable() bool {
	return d.Family == FamilyReceivable
}
