package repository

import "github.com/tu-usuario/facturacion-pro/internal/domain/entity"

// AuditLogRepository define el puerto append-only del rastro de auditoría.
// Puede ser la misma DB u otro destino; el motor solo inserta y lista.
type AuditLogRepository interface {
	Append(e *entity.AuditLogEntry) error
	ListByRecord(tableName, recordID string, limit, offset int) ([]*entity.AuditLogEntry, error)
}
