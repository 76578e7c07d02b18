// Package billing contiene las reglas puras del ciclo de vida de documentos:
// tabla de transiciones, clasificación por saldo y el epsilon canónico de
// liquidación. Sin dependencias de infraestructura.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// SettleEpsilon es la tolerancia única para considerar un documento liquidado:
// un saldo en (0, 0.01] se trata como totalmente pagado. Se aplica en todos los
// flujos; no existe otro epsilon en el sistema.
var SettleEpsilon = decimal.NewFromFloat(0.01)

// transitions tabla de transiciones legales entre estados.
// ANULADA es terminal; VENCIDA es una clasificación derivada sobre
// PENDIENTE/PARCIAL que además se materializa para filtros (ver Reclassify).
var transitions = map[string]map[string]bool{
	entity.StatePendiente: {
		entity.StateParcial: true,
		entity.StatePagada:  true,
		entity.StateVencida: true,
		entity.StateAnulada: true,
	},
	entity.StateParcial: {
		entity.StatePagada:  true,
		entity.StateVencida: true,
		entity.StateAnulada: true,
	},
	entity.StateVencida: {
		entity.StateParcial: true,
		entity.StatePagada:  true,
		entity.StateAnulada: true,
	},
	entity.StatePagada: {
		// Corrección administrativa: una pagada solo puede anularse.
		entity.StateAnulada: true,
	},
	entity.StateAnulada: {},
}

// CanTransition indica si la transición from -> to es legal.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Transition valida y aplica la transición sobre el documento.
// Anular una ANULADA no es error: es un no-op idempotente (el caller debe
// consultar antes con IsTerminal para no repetir efectos de inventario).
func Transition(doc *entity.Document, to string) error {
	if doc.State == entity.StateAnulada && to == entity.StateAnulada {
		return nil
	}
	if !CanTransition(doc.State, to) {
		return domain.Conflictf("transición ilegal: el documento %s está %s y no puede pasar a %s",
			doc.ID, doc.State, to)
	}
	doc.State = to
	return nil
}

// IsSettled indica si un saldo se considera totalmente pagado (<= epsilon).
func IsSettled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(SettleEpsilon)
}

// ClassifyBalance deriva el estado de pago a partir del total y el saldo.
// PAGADA <=> saldo <= 0.01; PARCIAL <=> 0.01 < saldo < total; si no, PENDIENTE.
func ClassifyBalance(total, balance decimal.Decimal) string {
	if IsSettled(balance) {
		return entity.StatePagada
	}
	if balance.LessThan(total) {
		return entity.StateParcial
	}
	return entity.StatePendiente
}

// IsOverdue clasificación de lectura: vencida si tiene fecha de vencimiento
// anterior a hoy y sigue con saldo (PENDIENTE o PARCIAL, o ya materializada
// como VENCIDA). No es una mutación: la copia persistida la mantiene el job
// periódico de reclasificación.
func IsOverdue(doc *entity.Document, today time.Time) bool {
	if doc.DueDate == nil {
		return false
	}
	switch doc.State {
	case entity.StatePendiente, entity.StateParcial, entity.StateVencida:
		return doc.DueDate.Before(truncateDay(today))
	default:
		return false
	}
}

// EffectiveState estado a reportar en lecturas: aplica la regla de vencimiento
// derivada encima del estado persistido.
func EffectiveState(doc *entity.Document, today time.Time) string {
	if IsOverdue(doc, today) {
		return entity.StateVencida
	}
	if doc.State == entity.StateVencida {
		// Materializada como vencida pero la fecha ya no lo sustenta
		// (ej: se corrió el due date); reportar según saldo.
		return ClassifyBalance(doc.GrandTotal, doc.Balance)
	}
	return doc.State
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
