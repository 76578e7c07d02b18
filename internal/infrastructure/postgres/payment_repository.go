package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository sobre PostgreSQL (usable con pool o tx).
// Los abonos solo se insertan y consultan; nunca se editan ni se borran.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste un abono.
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (id, document_id, date, amount, method, currency, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.DocumentID, payment.Date, payment.Amount, payment.Method,
		payment.Currency, nullIfEmpty(payment.Reference), payment.CreatedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByDocumentID lista los abonos de un documento, del más reciente al más viejo.
func (r *PaymentRepo) ListByDocumentID(documentID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, document_id, date, amount, method, currency, COALESCE(reference, ''), created_by, created_at
		FROM payments WHERE document_id = $1
		ORDER BY date DESC, created_at DESC`
	rows, err := r.q.Query(context.Background(), query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(
			&p.ID, &p.DocumentID, &p.Date, &p.Amount, &p.Method,
			&p.Currency, &p.Reference, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// SumByDocumentID suma los abonos registrados de un documento.
func (r *PaymentRepo) SumByDocumentID(documentID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE document_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, documentID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}
