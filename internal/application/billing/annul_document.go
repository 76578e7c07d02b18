package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// AnnulDocumentUseCase anula documentos. La anulación es terminal: revierte el
// efecto de inventario, deja el saldo en cero y nunca borra la fila.
type AnnulDocumentUseCase struct {
	txRunner   BillingTxRunner
	reconciler StockReconciler
	recorder   *audit.Recorder
	log        *logger.Logger
}

// NewAnnulDocumentUseCase construye el caso de uso.
func NewAnnulDocumentUseCase(txRunner BillingTxRunner, reconciler StockReconciler, recorder *audit.Recorder, log *logger.Logger) *AnnulDocumentUseCase {
	return &AnnulDocumentUseCase{txRunner: txRunner, reconciler: reconciler, recorder: recorder, log: log}
}

// Annul anula el documento. Anular dos veces es idempotente: la segunda llamada
// responde éxito sin repetir el ajuste de inventario ni escribir auditoría.
func (uc *AnnulDocumentUseCase) Annul(ctx context.Context, companyID, actor, documentID string) (*dto.AnnulResponse, error) {
	var (
		doc           *entity.Document
		before        entity.Document
		alreadyVoid   bool
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
		if doc.State == entity.StateAnulada {
			alreadyVoid = true
			return nil
		}
		before = *doc

		lines, err := docRepo.GetLinesByDocumentID(doc.ID)
		if err != nil {
			return err
		}

		// Revertir el efecto de inventario de la creación, línea por línea.
		effect := dombilling.StockEffectOnAnnul(doc.Family)
		warnings, err := uc.reconciler.Apply(productRepo, effect, lines)
		if err != nil {
			return err
		}
		stockWarnings = warnings

		doc.Balance = decimal.Zero
		if err := dombilling.Transition(doc, entity.StateAnulada); err != nil {
			return err
		}
		return docRepo.UpdateBalanceAndState(doc)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.AnnulResponse{
		DocumentID:    doc.ID,
		State:         doc.State,
		AlreadyVoid:   alreadyVoid,
		StockWarnings: stockWarnings,
	}
	if alreadyVoid {
		return resp, nil
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionAnnul,
		TableName: documentTable(doc.Family), RecordID: doc.ID,
		Before: &before, After: doc,
	})
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}
