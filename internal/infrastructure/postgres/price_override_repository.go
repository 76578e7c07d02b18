package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

var _ repository.PriceOverrideRepository = (*PriceOverrideRepo)(nil)

// PriceOverrideRepo implementación de PriceOverrideRepository sobre PostgreSQL.
// La tabla tiene unique (client_id, product_id): un par, un precio especial.
type PriceOverrideRepo struct {
	q Querier
}

// NewPriceOverrideRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceOverrideRepository(q Querier) *PriceOverrideRepo {
	return &PriceOverrideRepo{q: q}
}

// Create persiste un precio especial.
func (r *PriceOverrideRepo) Create(o *entity.PriceOverride) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO price_overrides (id, company_id, client_id, product_id, fixed_price, discount_pct, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.CompanyID, o.ClientID, o.ProductID, o.FixedPrice, o.DiscountPct, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert price override: %w", err)
	}
	return nil
}

// Update modifica montos de un precio especial.
func (r *PriceOverrideRepo) Update(o *entity.PriceOverride) error {
	query := `
		UPDATE price_overrides
		SET fixed_price = $2, discount_pct = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, o.ID, o.FixedPrice, o.DiscountPct, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update price override: %w", err)
	}
	return nil
}

// Delete elimina un precio especial.
func (r *PriceOverrideRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM price_overrides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete price override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const overrideColumns = `id, company_id, client_id, product_id, fixed_price, discount_pct, created_at, updated_at`

// GetByID obtiene un precio especial por ID.
func (r *PriceOverrideRepo) GetByID(id string) (*entity.PriceOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM price_overrides WHERE id = $1`
	return scanOverride(r.q.QueryRow(context.Background(), query, id))
}

// GetByClientAndProduct devuelve nil, nil si no existe: la ausencia no es error.
func (r *PriceOverrideRepo) GetByClientAndProduct(clientID, productID string) (*entity.PriceOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM price_overrides WHERE client_id = $1 AND product_id = $2`
	return scanOverride(r.q.QueryRow(context.Background(), query, clientID, productID))
}

// ListByCompany lista los precios especiales de la empresa.
func (r *PriceOverrideRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.PriceOverride, error) {
	query := `SELECT ` + overrideColumns + `
		FROM price_overrides WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list price overrides: %w", err)
	}
	defer rows.Close()

	var out []*entity.PriceOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOverride(row pgxScanner) (*entity.PriceOverride, error) {
	var o entity.PriceOverride
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.ClientID, &o.ProductID,
		&o.FixedPrice, &o.DiscountPct, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan price override: %w", err)
	}
	return &o, nil
}
