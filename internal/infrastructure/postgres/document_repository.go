package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL (usable con pool o tx).
// Las dos familias comparten la tabla documents; family discrimina.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, company_id, family, counterparty_id, issue_date, due_date, terms, currency,
	tax_rate, subtotal, tax_total, grand_total, balance, state, description,
	clave, consecutivo, submission_status, submitted_at, authority_ref, submission_errors,
	version, created_by, created_at, updated_at`

// Create persiste la cabecera del documento.
func (r *DocumentRepo) Create(doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := r.q.Exec(context.Background(), query,
		doc.ID, doc.CompanyID, doc.Family, doc.CounterpartyID, doc.IssueDate, doc.DueDate,
		doc.Terms, doc.Currency, doc.TaxRate, doc.Subtotal, doc.TaxTotal, doc.GrandTotal,
		doc.Balance, doc.State, nullIfEmpty(doc.Description),
		nullIfEmpty(doc.Clave), nullIfEmpty(doc.Consecutivo), doc.SubmissionStatus,
		doc.SubmittedAt, nullIfEmpty(doc.AuthorityRef), nullIfEmpty(doc.SubmissionErrors),
		doc.Version, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *DocumentRepo) CreateLine(line *entity.LineItem) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO line_items (id, document_id, product_id, description, quantity,
		                        unit_price, tax_rate, base_amount, tax_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.DocumentID, line.ProductID, line.Description, line.Quantity,
		line.UnitPrice, line.TaxRate, line.BaseAmount, line.TaxAmount, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert line item: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID.
func (r *DocumentRepo) GetByID(id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate bloquea la fila del documento para serializar pagos y
// anulaciones concurrentes. Solo tiene sentido dentro de una transacción.
func (r *DocumentRepo) GetByIDForUpdate(id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	return scanDocument(r.q.QueryRow(context.Background(), query, id))
}

// GetLinesByDocumentID obtiene las líneas de un documento en orden de inserción.
func (r *DocumentRepo) GetLinesByDocumentID(documentID string) ([]*entity.LineItem, error) {
	query := `
		SELECT id, document_id, product_id, description, quantity,
		       unit_price, tax_rate, base_amount, tax_amount, line_total
		FROM line_items WHERE document_id = $1
		ORDER BY ctid`
	rows, err := r.q.Query(context.Background(), query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var lines []*entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(
			&l.ID, &l.DocumentID, &l.ProductID, &l.Description, &l.Quantity,
			&l.UnitPrice, &l.TaxRate, &l.BaseAmount, &l.TaxAmount, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// UpdateBalanceAndState actualiza saldo, estado, total y versión con chequeo
// optimista: si la versión en DB ya no coincide, otro proceso ganó y se
// devuelve conflicto para que el caller relea y reintente.
func (r *DocumentRepo) UpdateBalanceAndState(doc *entity.Document) error {
	query := `
		UPDATE documents
		SET balance = $2, state = $3, subtotal = $4, tax_total = $5, grand_total = $6,
		    version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $8`
	tag, err := r.q.Exec(context.Background(), query,
		doc.ID, doc.Balance, doc.State, doc.Subtotal, doc.TaxTotal, doc.GrandTotal,
		time.Now(), doc.Version,
	)
	if err != nil {
		return fmt.Errorf("update document balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflictf("el documento %s cambió mientras se procesaba; reintente", doc.ID)
	}
	doc.Version++
	return nil
}

// UpdateSubmission actualiza solo los campos fiscales de envío.
func (r *DocumentRepo) UpdateSubmission(doc *entity.Document) error {
	query := `
		UPDATE documents
		SET clave             = COALESCE($2, clave),
		    consecutivo       = COALESCE($3, consecutivo),
		    submission_status = $4,
		    submitted_at      = $5,
		    authority_ref     = COALESCE($6, authority_ref),
		    submission_errors = $7,
		    updated_at        = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		doc.ID, nullIfEmpty(doc.Clave), nullIfEmpty(doc.Consecutivo),
		doc.SubmissionStatus, doc.SubmittedAt, nullIfEmpty(doc.AuthorityRef),
		doc.SubmissionErrors, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update document submission: %w", err)
	}
	return nil
}

// ReplaceLines borra el juego actual de líneas y escribe el nuevo.
func (r *DocumentRepo) ReplaceLines(documentID string, lines []*entity.LineItem) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM line_items WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	for _, line := range lines {
		if err := r.CreateLine(line); err != nil {
			return err
		}
	}
	return nil
}

// ListByCompany lista documentos de la empresa con filtros opcionales.
// El filtro de estado se evalúa sobre el estado efectivo: VENCIDA incluye los
// PENDIENTE/PARCIAL con fecha vencida que el job aún no materializó, y esos
// mismos documentos no aparecen al filtrar por su estado persistido.
func (r *DocumentRepo) ListByCompany(companyID string, f repository.DocumentFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1
		  AND ($2 = '' OR family = $2)
		  AND ($3 = '' OR CASE
			WHEN $3 = 'VENCIDA' THEN state = 'VENCIDA'
			  OR (state IN ('PENDIENTE', 'PARCIAL') AND due_date IS NOT NULL AND due_date < now()::date)
			WHEN $3 IN ('PENDIENTE', 'PARCIAL') THEN state = $3
			  AND (due_date IS NULL OR due_date >= now()::date)
			ELSE state = $3
		  END)
		ORDER BY issue_date DESC, created_at DESC
		LIMIT $4 OFFSET $5`
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.Query(context.Background(), query, companyID, f.Family, f.State, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkOverdue materializa VENCIDA para documentos con saldo y fecha vencida.
func (r *DocumentRepo) MarkOverdue(today time.Time) (int64, error) {
	query := `
		UPDATE documents
		SET state = $1, updated_at = now()
		WHERE due_date IS NOT NULL
		  AND due_date < $2::date
		  AND state IN ($3, $4)`
	tag, err := r.q.Exec(context.Background(), query,
		entity.StateVencida, today, entity.StatePendiente, entity.StateParcial)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnmarkOverdue regresa a estado por saldo los VENCIDA cuya fecha ya no lo sustenta.
func (r *DocumentRepo) UnmarkOverdue(today time.Time) (int64, error) {
	query := `
		UPDATE documents
		SET state = CASE
		        WHEN balance <= 0.01 THEN $2
		        WHEN balance < grand_total THEN $3
		        ELSE $4
		    END,
		    updated_at = now()
		WHERE state = $1
		  AND (due_date IS NULL OR due_date >= $5::date)`
	tag, err := r.q.Exec(context.Background(), query,
		entity.StateVencida, entity.StatePagada, entity.StateParcial, entity.StatePendiente, today)
	if err != nil {
		return 0, fmt.Errorf("unmark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// NextSequence devuelve la siguiente secuencia del consecutivo por (empresa,
// tipo de documento). El upsert serializa bajo la transacción en curso.
func (r *DocumentRepo) NextSequence(companyID, docType string) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, doc_type, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, doc_type)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var seq int64
	if err := r.q.QueryRow(context.Background(), query, companyID, docType).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next document sequence: %w", err)
	}
	return seq, nil
}

func scanDocument(row pgxScanner) (*entity.Document, error) {
	var doc entity.Document
	var description, clave, consecutivo, authorityRef, submissionErrors *string
	err := row.Scan(
		&doc.ID, &doc.CompanyID, &doc.Family, &doc.CounterpartyID, &doc.IssueDate, &doc.DueDate,
		&doc.Terms, &doc.Currency, &doc.TaxRate, &doc.Subtotal, &doc.TaxTotal, &doc.GrandTotal,
		&doc.Balance, &doc.State, &description,
		&clave, &consecutivo, &doc.SubmissionStatus, &doc.SubmittedAt, &authorityRef, &submissionErrors,
		&doc.Version, &doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Description = derefStr(description)
	doc.Clave = derefStr(clave)
	doc.Consecutivo = derefStr(consecutivo)
	doc.AuthorityRef = derefStr(authorityRef)
	doc.SubmissionErrors = derefStr(submissionErrors)
	return &doc, nil
}
