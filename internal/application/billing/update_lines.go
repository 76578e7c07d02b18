package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// UpdateLinesUseCase reemplaza el juego de líneas de un documento PENDIENTE y
// recalcula totales. Revierte el efecto de inventario de las líneas viejas y
// aplica el de las nuevas en la misma transacción.
type UpdateLinesUseCase struct {
	txRunner    BillingTxRunner
	reconciler  StockReconciler
	productRepo repository.ProductRepository
	pricing     *PricingResolver
	recorder    *audit.Recorder
	log         *logger.Logger
}

// NewUpdateLinesUseCase construye el caso de uso.
func NewUpdateLinesUseCase(
	txRunner BillingTxRunner,
	reconciler StockReconciler,
	productRepo repository.ProductRepository,
	pricing *PricingResolver,
	recorder *audit.Recorder,
	log *logger.Logger,
) *UpdateLinesUseCase {
	return &UpdateLinesUseCase{
		txRunner:    txRunner,
		reconciler:  reconciler,
		productRepo: productRepo,
		pricing:     pricing,
		recorder:    recorder,
		log:         log,
	}
}

// UpdateLines edita las líneas. Solo se permite sobre documentos PENDIENTE:
// con abonos registrados (PARCIAL) o en estado terminal la edición se rechaza.
func (uc *UpdateLinesUseCase) UpdateLines(ctx context.Context, companyID, actor, documentID string, in dto.UpdateLinesRequest) (*dto.DocumentResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Validationf("lines", "el documento debe conservar al menos una línea")
	}

	var (
		doc           *entity.Document
		before        entity.Document
		newLines      []*entity.LineItem
		stockWarnings []domain.StockLineFailure
	)
	err := uc.txRunner.RunBilling(ctx, func(
		docRepo repository.DocumentRepository,
		_ repository.PaymentRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		doc, err = lockDocument(docRepo, companyID, documentID)
		if err != nil {
			return err
		}
		if doc.State != entity.StatePendiente {
			return domain.Conflictf("solo un documento PENDIENTE admite edición de líneas; este está %s", doc.State)
		}
		before = *doc

		oldLines, err := docRepo.GetLinesByDocumentID(doc.ID)
		if err != nil {
			return err
		}

		resolver := &lineResolver{productRepo: uc.productRepo, pricing: uc.pricing, log: uc.log}
		inputs, err := resolver.resolve(doc.Family, doc.CounterpartyID, in.Lines)
		if err != nil {
			return err
		}
		lines, totals, err := BuildLines(doc.Family, doc.ID, doc.TaxRate, inputs)
		if err != nil {
			return err
		}
		if !HasBillableLine(lines) {
			return domain.Validationf("lines", "todas las líneas tienen cantidad cero; nada que facturar")
		}
		newLines = lines

		// Revertir el efecto de las líneas salientes y aplicar el de las
		// entrantes. Los fallos de negocio por línea se acumulan, no abortan.
		createEffect := dombilling.StockEffectOnCreate(doc.Family)
		warnings, err := uc.reconciler.Apply(productRepo, createEffect.Invert(), oldLines)
		if err != nil {
			return err
		}
		moreWarnings, err := uc.reconciler.Apply(productRepo, createEffect, lines)
		if err != nil {
			return err
		}
		stockWarnings = append(warnings, moreWarnings...)

		if err := docRepo.ReplaceLines(doc.ID, lines); err != nil {
			return err
		}

		doc.Subtotal = totals.Subtotal
		doc.TaxTotal = totals.TaxTotal
		doc.GrandTotal = totals.GrandTotal
		doc.Balance = totals.GrandTotal // PENDIENTE: sin abonos, saldo = total
		doc.UpdatedAt = time.Now()
		return docRepo.UpdateBalanceAndState(doc)
	})
	if err != nil {
		return nil, err
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionLineEdit,
		TableName: documentTable(doc.Family), RecordID: doc.ID,
		Before: &before, After: doc,
	})

	resp := documentToResponse(doc, newLines, time.Now())
	resp.StockWarnings = stockWarnings
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}
