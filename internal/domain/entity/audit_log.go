package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditables.
const (
	ActionCreate     = "CREATE"
	ActionUpdate     = "UPDATE"
	ActionPayment    = "PAYMENT"
	ActionDebit      = "DEBIT_ADJUSTMENT"
	ActionAnnul      = "ANNUL"
	ActionLineEdit   = "LINE_EDIT"
	ActionSubmission = "SUBMISSION"
)

// AuditLogEntry registro inmutable de una mutación: quién, qué, antes y después.
// Solo se inserta; nunca se actualiza ni se borra.
type AuditLogEntry struct {
	ID        string
	CompanyID string
	Actor     string // user ID del token
	Action    string
	TableName string
	RecordID  string
	Before    json.RawMessage // snapshot previo (nil en CREATE)
	After     json.RawMessage // snapshot posterior
	CreatedAt time.Time
}
