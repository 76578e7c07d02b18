package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// PricingResolver resuelve el precio unitario a cobrar a un cliente por un
// producto: precio fijo pactado > descuento porcentual > precio de catálogo.
// Consulta pura, sin efectos.
type PricingResolver struct {
	overrideRepo repository.PriceOverrideRepository
}

// NewPricingResolver construye el resolutor.
func NewPricingResolver(overrideRepo repository.PriceOverrideRepository) *PricingResolver {
	return &PricingResolver{overrideRepo: overrideRepo}
}

// ResolvePrice determina el precio unitario y el tipo de descuento aplicado.
// Si no hay fila de override, cae en silencio al precio de catálogo: la
// ausencia no es un error.
func (r *PricingResolver) ResolvePrice(clientID, productID string, catalogPrice decimal.Decimal) (decimal.Decimal, string, error) {
	override, err := r.overrideRepo.GetByClientAndProduct(clientID, productID)
	if err != nil {
		return decimal.Zero, "", &domain.DependencyError{Op: "precios.GetByClientAndProduct", Err: err}
	}
	if override == nil {
		return catalogPrice, entity.DiscountNone, nil
	}
	// Precio fijo positivo gana siempre, aunque también haya porcentaje.
	if override.FixedPrice.GreaterThan(decimal.Zero) {
		return override.FixedPrice, entity.DiscountFixedPrice, nil
	}
	if override.DiscountPct.GreaterThan(decimal.Zero) {
		factor := decimal.NewFromInt(1).Sub(override.DiscountPct.Div(decimal.NewFromInt(100)))
		return catalogPrice.Mul(factor), entity.DiscountPercentage, nil
	}
	return catalogPrice, entity.DiscountNone, nil
}

// PriceOverrideUseCase administra los precios especiales por (cliente, producto).
// Se editan de forma independiente de cualquier documento; cada mutación se audita.
type PriceOverrideUseCase struct {
	overrideRepo repository.PriceOverrideRepository
	recorder     *audit.Recorder
}

// NewPriceOverrideUseCase construye el caso de uso.
func NewPriceOverrideUseCase(overrideRepo repository.PriceOverrideRepository, recorder *audit.Recorder) *PriceOverrideUseCase {
	return &PriceOverrideUseCase{overrideRepo: overrideRepo, recorder: recorder}
}

// Create registra un precio especial. Exige precio fijo o porcentaje positivo
// (al menos uno) y porcentaje menor a 100.
func (uc *PriceOverrideUseCase) Create(ctx context.Context, companyID, actor string, in dto.PriceOverrideRequest) (*dto.PriceOverrideResponse, error) {
	if in.ClientID == "" || in.ProductID == "" {
		return nil, domain.Validationf("client_id/product_id", "cliente y producto son obligatorios")
	}
	if err := validateOverrideAmounts(in); err != nil {
		return nil, err
	}
	now := time.Now()
	o := &entity.PriceOverride{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ClientID:    in.ClientID,
		ProductID:   in.ProductID,
		FixedPrice:  in.FixedPrice,
		DiscountPct: in.DiscountPct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.overrideRepo.Create(o); err != nil {
		if err == domain.ErrDuplicate {
			return nil, domain.Conflictf("ya existe un precio especial para el cliente %s y el producto %s", in.ClientID, in.ProductID)
		}
		return nil, err
	}
	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionCreate,
		TableName: "price_overrides", RecordID: o.ID, After: o,
	})
	resp := overrideToResponse(o)
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}

// Update modifica un precio especial existente.
func (uc *PriceOverrideUseCase) Update(ctx context.Context, companyID, actor, id string, in dto.PriceOverrideRequest) (*dto.PriceOverrideResponse, error) {
	if err := validateOverrideAmounts(in); err != nil {
		return nil, err
	}
	o, err := uc.overrideRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	before := *o
	o.FixedPrice = in.FixedPrice
	o.DiscountPct = in.DiscountPct
	o.UpdatedAt = time.Now()
	if err := uc.overrideRepo.Update(o); err != nil {
		return nil, err
	}
	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionUpdate,
		TableName: "price_overrides", RecordID: o.ID, Before: before, After: o,
	})
	resp := overrideToResponse(o)
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}

// Delete elimina un precio especial (es configuración, no documento: sí se borra).
// La advertencia devuelta queda vacía salvo que la auditoría no se haya podido escribir.
func (uc *PriceOverrideUseCase) Delete(ctx context.Context, companyID, actor, id string) (string, error) {
	o, err := uc.overrideRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if o == nil || o.CompanyID != companyID {
		return "", domain.ErrNotFound
	}
	if err := uc.overrideRepo.Delete(id); err != nil {
		return "", err
	}
	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionUpdate,
		TableName: "price_overrides", RecordID: id, Before: o,
	})
	return audit.WarningMessage(auditErr), nil
}

// List devuelve los precios especiales de la empresa.
func (uc *PriceOverrideUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]*dto.PriceOverrideResponse, error) {
	page.DefaultPage()
	list, err := uc.overrideRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PriceOverrideResponse, 0, len(list))
	for _, o := range list {
		out = append(out, overrideToResponse(o))
	}
	return out, nil
}

func validateOverrideAmounts(in dto.PriceOverrideRequest) error {
	if in.FixedPrice.IsNegative() {
		return domain.Validationf("fixed_price", "el precio fijo no puede ser negativo: %s", in.FixedPrice)
	}
	if in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return domain.Validationf("discount_pct", "el descuento debe estar entre 0 y 100: %s", in.DiscountPct)
	}
	if in.FixedPrice.IsZero() && in.DiscountPct.IsZero() {
		return domain.Validationf("fixed_price/discount_pct", "debe indicar precio fijo o porcentaje de descuento")
	}
	return nil
}

func overrideToResponse(o *entity.PriceOverride) *dto.PriceOverrideResponse {
	return &dto.PriceOverrideResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ProductID:   o.ProductID,
		FixedPrice:  o.FixedPrice,
		DiscountPct: o.DiscountPct,
	}
}
