// Package audit registra el rastro inmutable de mutaciones del motor de
// facturación: quién, qué, snapshot anterior y posterior.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// Entry datos de una mutación a auditar. Before puede ser nil (creación).
type Entry struct {
	CompanyID string
	Actor     string
	Action    string
	TableName string
	RecordID  string
	Before    any
	After     any
}

// Recorder escribe entradas de auditoría después de que la mutación de negocio
// ya hizo commit. Un fallo aquí NUNCA revierte el negocio: se loggea fuerte y
// se devuelve como advertencia al caller.
type Recorder struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record serializa los snapshots e inserta la entrada. Retorna
// *domain.AuditWriteError si la escritura falla; la operación de negocio sigue
// siendo válida, el caller solo propaga la advertencia.
func (r *Recorder) Record(e Entry) *domain.AuditWriteError {
	entry := &entity.AuditLogEntry{
		ID:        uuid.New().String(),
		CompanyID: e.CompanyID,
		Actor:     e.Actor,
		Action:    e.Action,
		TableName: e.TableName,
		RecordID:  e.RecordID,
		CreatedAt: time.Now(),
	}

	var err error
	if e.Before != nil {
		if entry.Before, err = json.Marshal(e.Before); err != nil {
			return r.fail(e, err)
		}
	}
	if e.After != nil {
		if entry.After, err = json.Marshal(e.After); err != nil {
			return r.fail(e, err)
		}
	}
	if err := r.repo.Append(entry); err != nil {
		return r.fail(e, err)
	}
	return nil
}

func (r *Recorder) fail(e Entry, err error) *domain.AuditWriteError {
	r.log.Error().
		Err(err).
		Str("actor", e.Actor).
		Str("action", e.Action).
		Str("table", e.TableName).
		Str("record_id", e.RecordID).
		Msg("fallo al escribir auditoría; la mutación de negocio NO se revierte")
	return &domain.AuditWriteError{Err: err}
}

// WarningMessage mensaje de advertencia para respuestas HTTP; vacío si err es nil.
func WarningMessage(err *domain.AuditWriteError) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
