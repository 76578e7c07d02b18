package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para abonos.
// Solo inserta y consulta: los abonos no se editan ni se borran.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListByDocumentID(documentID string) ([]*entity.Payment, error)
	// SumByDocumentID suma los abonos registrados de un documento (invariante:
	// nunca supera el total original).
	SumByDocumentID(documentID string) (decimal.Decimal, error)
}
