package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores centinela de dominio (sin dependencias externas).
// Los tipos de abajo envuelven a estos centinelas para que errors.Is funcione
// en handlers y casos de uso sin perder el detalle del mensaje.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrDependency   = errors.New("dependencia externa no disponible")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// ValidationError entrada malformada. Siempre se detecta antes de escribir nada.
// Field identifica el campo violado; Message nombra el invariante y los valores actuales.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf construye un ValidationError con mensaje formateado.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrors agrupa varias violaciones (ej: precondiciones de envío a Hacienda).
// Se reporta la lista completa, nunca un fallo parcial.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return "validación fallida: " + strings.Join(msgs, "; ")
}

func (e *ValidationErrors) Unwrap() error { return ErrValidation }

// Add agrega una violación a la lista.
func (e *ValidationErrors) Add(field, format string, args ...any) {
	e.Errors = append(e.Errors, Validationf(field, format, args...))
}

// HasErrors indica si se acumuló al menos una violación.
func (e *ValidationErrors) HasErrors() bool { return len(e.Errors) > 0 }

// ConflictError el estado cambió por debajo (versión optimista) o la transición
// pedida no es legal desde el estado actual. Recuperable releyendo y reintentando una vez.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflictf construye un ConflictError con mensaje formateado.
func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// DependencyError una dependencia (DB, inventario, Hacienda) no respondió.
// Fatal para la operación en curso; la transacción garantiza que no queda estado parcial.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependencia no disponible en %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrDependency) además del unwrap de la causa.
func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// StockLineFailure fallo de ajuste de inventario en una línea concreta.
type StockLineFailure struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// AuditWriteError fallo al escribir la entrada de auditoría. No revierte la
// mutación de negocio: se registra en el log y se devuelve como advertencia.
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("no se pudo escribir auditoría: %v", e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }
