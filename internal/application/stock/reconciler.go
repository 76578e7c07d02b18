// Package stock aplica y revierte los ajustes de inventario implicados por las
// líneas de un documento. El signo lo decide domain/billing.StockEffect una
// sola vez por familia y acción.
package stock

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// Reconciler aplica deltas de stock línea por línea dentro de la transacción
// del caller (se le pasa el ProductRepository atado a la tx).
type Reconciler struct {
	log *logger.Logger
}

// NewReconciler construye el reconciliador.
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Apply ajusta el stock de cada línea con referencia a producto según el efecto
// dado. Las líneas libres (sin producto) y las de cantidad cero se saltan.
//
// Cada línea es independiente: un producto desconocido no bloquea a las demás;
// esos fallos se acumulan y se devuelven para corrección manual. Un error de
// infraestructura (DB caída) sí aborta: el caller hace rollback completo.
func (r *Reconciler) Apply(
	productRepo repository.ProductRepository,
	effect billing.StockEffect,
	lines []*entity.LineItem,
) ([]domain.StockLineFailure, error) {
	var failures []domain.StockLineFailure

	for _, line := range lines {
		if !line.HasProduct() || line.Quantity.IsZero() {
			continue
		}
		productID := *line.ProductID

		product, err := productRepo.GetByIDForUpdate(productID)
		if err != nil {
			if isInfrastructure(err) {
				return failures, &domain.DependencyError{Op: "inventario.GetByIDForUpdate", Err: err}
			}
			failures = append(failures, r.failure(line, productID, "error consultando producto: "+err.Error()))
			continue
		}
		if product == nil {
			failures = append(failures, r.failure(line, productID, "producto no existe en inventario"))
			continue
		}

		delta := effect.Delta(line.Quantity)
		if effect == billing.StockConsume && product.Stock.LessThan(line.Quantity) {
			failures = append(failures, r.failure(line, productID,
				"stock insuficiente: hay "+product.Stock.String()+", la línea pide "+line.Quantity.String()))
			continue
		}
		if err := productRepo.AdjustStock(productID, delta); err != nil {
			if isInfrastructure(err) {
				return failures, &domain.DependencyError{Op: "inventario.AdjustStock", Err: err}
			}
			failures = append(failures, r.failure(line, productID, "ajuste de stock falló: "+err.Error()))
		}
	}
	return failures, nil
}

func (r *Reconciler) failure(line *entity.LineItem, productID, reason string) domain.StockLineFailure {
	r.log.Warn().
		Str("line_id", line.ID).
		Str("product_id", productID).
		Str("reason", reason).
		Msg("ajuste de inventario no aplicado en una línea")
	return domain.StockLineFailure{LineID: line.ID, ProductID: productID, Reason: reason}
}

// isInfrastructure distingue un fallo de infraestructura (conexión, timeout,
// error interno de PostgreSQL) de una condición de negocio por línea.
func isInfrastructure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Clase 08 = connection exception, 53 = insufficient resources, XX = internal.
		switch pgErr.Code[:2] {
		case "08", "53", "57", "58", "XX":
			return true
		}
		return false
	}
	var depErr *domain.DependencyError
	return errors.As(err, &depErr)
}
