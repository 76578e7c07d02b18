package dto

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
)

// LineItemRequest línea de documento. ProductID vacío = línea libre (servicio),
// no mueve inventario. UnitPrice en cero = resolver precio (catálogo u override).
type LineItemRequest struct {
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"` // nil = tasa del producto
}

// CreateDocumentRequest body para POST /api/invoices y POST /api/bills.
// La familia la fija el endpoint, no el body.
type CreateDocumentRequest struct {
	CounterpartyID string            `json:"counterparty_id"`
	Terms          string            `json:"terms"`              // CONTADO | CREDITO
	DueDate        string            `json:"due_date,omitempty"` // YYYY-MM-DD; obligatorio en crédito
	Currency       string            `json:"currency,omitempty"` // por defecto CRC
	TaxRate        decimal.Decimal   `json:"tax_rate,omitempty"` // nivel documento (solo por pagar)
	Description    string            `json:"description,omitempty"`
	PaymentMethod  string            `json:"payment_method,omitempty"` // medio del pago implícito en contado
	Lines          []LineItemRequest `json:"lines"`
}

// UpdateLinesRequest body para PUT /api/invoices/:id/lines.
type UpdateLinesRequest struct {
	Lines []LineItemRequest `json:"lines"`
}

// LineItemResponse línea en respuestas.
type LineItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// DocumentResponse documento con detalle.
// State es el estado efectivo (incluye la clasificación derivada de vencimiento).
type DocumentResponse struct {
	ID               string                    `json:"id"`
	Family           string                    `json:"family"`
	CounterpartyID   string                    `json:"counterparty_id"`
	IssueDate        string                    `json:"issue_date"`
	DueDate          string                    `json:"due_date,omitempty"`
	Terms            string                    `json:"terms"`
	Currency         string                    `json:"currency"`
	Subtotal         decimal.Decimal           `json:"subtotal"`
	TaxTotal         decimal.Decimal           `json:"tax_total"`
	GrandTotal       decimal.Decimal           `json:"grand_total"`
	Balance          decimal.Decimal           `json:"balance"`
	State            string                    `json:"state"`
	Description      string                    `json:"description,omitempty"`
	Clave            string                    `json:"clave,omitempty"`
	Consecutivo      string                    `json:"consecutivo,omitempty"`
	SubmissionStatus string                    `json:"submission_status,omitempty"`
	Lines            []LineItemResponse        `json:"lines"`
	StockWarnings    []domain.StockLineFailure `json:"stock_warnings,omitempty"`
	AuditWarning     string                    `json:"audit_warning,omitempty"`
}

// ApplyPaymentRequest body para POST /api/invoices/:id/payments.
type ApplyPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date,omitempty"` // YYYY-MM-DD; por defecto hoy
	Method    string          `json:"method"`
	Currency  string          `json:"currency,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// PaymentResponse resultado de aplicar un abono.
type PaymentResponse struct {
	PaymentID    string          `json:"payment_id"`
	DocumentID   string          `json:"document_id"`
	Amount       decimal.Decimal `json:"amount"`
	NewBalance   decimal.Decimal `json:"new_balance"`
	NewState     string          `json:"new_state"`
	AuditWarning string          `json:"audit_warning,omitempty"`
}

// DebitAdjustmentRequest body para POST /api/invoices/:id/debit-adjustments.
// Es la única vía por la que un saldo puede subir.
type DebitAdjustmentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// AnnulResponse resultado de anular un documento.
type AnnulResponse struct {
	DocumentID    string                    `json:"document_id"`
	State         string                    `json:"state"`
	AlreadyVoid   bool                      `json:"already_void"` // true = era no-op idempotente
	StockWarnings []domain.StockLineFailure `json:"stock_warnings,omitempty"`
	AuditWarning  string                    `json:"audit_warning,omitempty"`
}

// SubmissionStatusResponse respuesta ligera para el polling del estado fiscal.
type SubmissionStatusResponse struct {
	DocumentID       string `json:"document_id"`
	Clave            string `json:"clave,omitempty"`
	Consecutivo      string `json:"consecutivo,omitempty"`
	SubmissionStatus string `json:"submission_status"`
	AuthorityRef     string `json:"authority_ref,omitempty"`
	Errors           string `json:"errors,omitempty"`
	AuditWarning     string `json:"audit_warning,omitempty"`
}

// PriceOverrideRequest body para crear/editar un precio especial.
type PriceOverrideRequest struct {
	ClientID    string          `json:"client_id"`
	ProductID   string          `json:"product_id"`
	FixedPrice  decimal.Decimal `json:"fixed_price,omitempty"`
	DiscountPct decimal.Decimal `json:"discount_pct,omitempty"`
}

// PriceOverrideResponse precio especial en respuestas.
type PriceOverrideResponse struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	ProductID    string          `json:"product_id"`
	FixedPrice   decimal.Decimal `json:"fixed_price"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	AuditWarning string          `json:"audit_warning,omitempty"`
}
