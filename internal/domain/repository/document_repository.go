package repository

import (
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// DocumentFilter filtros para listados de documentos.
type DocumentFilter struct {
	Family string // RECEIVABLE | PAYABLE | vacío = ambas
	State  string // estado persistido; vacío = todos
	Limit  int
	Offset int
}

// DocumentRepository define el puerto de persistencia para documentos y sus líneas.
type DocumentRepository interface {
	Create(doc *entity.Document) error
	CreateLine(line *entity.LineItem) error
	GetByID(id string) (*entity.Document, error)
	// GetByIDForUpdate bloquea la fila del documento (SELECT FOR UPDATE) para
	// serializar pagos y anulaciones concurrentes sobre el mismo documento.
	GetByIDForUpdate(id string) (*entity.Document, error)
	GetLinesByDocumentID(documentID string) ([]*entity.LineItem, error)
	// UpdateBalanceAndState actualiza saldo, estado y versión con chequeo
	// optimista: falla con ErrConflict si la versión en DB ya no coincide.
	UpdateBalanceAndState(doc *entity.Document) error
	// UpdateSubmission actualiza solo los campos fiscales de envío a Hacienda.
	UpdateSubmission(doc *entity.Document) error
	// ReplaceLines borra las líneas actuales y escribe el nuevo juego (edición).
	ReplaceLines(documentID string, lines []*entity.LineItem) error
	ListByCompany(companyID string, f DocumentFilter) ([]*entity.Document, error)
	// MarkOverdue materializa VENCIDA para documentos PENDIENTE/PARCIAL con
	// due_date anterior a today; devuelve cuántos cambió.
	MarkOverdue(today time.Time) (int64, error)
	// UnmarkOverdue regresa a estado por saldo los VENCIDA cuya fecha ya no lo
	// sustenta (ej: se corrió el due date); devuelve cuántos cambió.
	UnmarkOverdue(today time.Time) (int64, error)
	// NextSequence devuelve la siguiente secuencia del consecutivo por
	// (empresa, tipo de documento). Debe ser atómico.
	NextSequence(companyID, docType string) (int64, error)
}
