package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	pkghacienda "github.com/tu-usuario/facturacion-pro/pkg/hacienda"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// PaymentUseCase aplica abonos y ajustes de débito sobre el saldo de un
// documento. El registro del pago y la actualización del saldo son atómicos;
// la fila se bloquea para serializar abonos concurrentes.
type PaymentUseCase struct {
	txRunner BillingTxRunner
	recorder *audit.Recorder
	log      *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(txRunner BillingTxRunner, recorder *audit.Recorder, log *logger.Logger) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, recorder: recorder, log: log}
}

// ApplyPayment registra un abono. El monto debe ser positivo y no exceder el
// saldo; si el saldo resultante queda dentro de la tolerancia de liquidación
// el documento pasa a PAGADA.
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, companyID, actor, documentID string, in dto.ApplyPaymentRequest) (*dto.PaymentResponse, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("amount", "el monto del abono debe ser mayor que cero")
	}
	if in.Method != "" && !pkghacienda.ValidPaymentMethodCodes[in.Method] {
		return nil, domain.Validationf("method", "medio de pago desconocido: %q", in.Method)
	}

	payDate := time.Now()
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, domain.Validationf("date", "fecha inválida %q, formato esperado YYYY-MM-DD", in.Date)
		}
		payDate = d
	}

	var (
		payment *entity.Payment
		doc     *entity.Document
	)
	err := uc.txRunner.RunBilling(ctx, func(
		docRepo repository.DocumentRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		doc, err = lockDocument(docRepo, companyID, documentID)
		if err != nil {
			return err
		}
		if doc.State == entity.StateAnulada {
			return domain.Conflictf("no se puede abonar a un documento anulado")
		}
		if doc.State == entity.StatePagada {
			return domain.Conflictf("el documento ya está pagado; no admite más abonos")
		}
		if in.Amount.GreaterThan(doc.Balance) {
			return domain.Validationf("amount", "el abono %s excede el saldo %s", in.Amount.StringFixed(2), doc.Balance.StringFixed(2))
		}

		currency := in.Currency
		if currency == "" {
			currency = doc.Currency
		}
		method := in.Method
		if method == "" {
			method = pkghacienda.MedioEfectivo
		}
		payment = &entity.Payment{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Date:       payDate,
			Amount:     in.Amount,
			Method:     method,
			Currency:   currency,
			Reference:  in.Reference,
			CreatedBy:  actor,
			CreatedAt:  time.Now(),
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}

		doc.Balance = doc.Balance.Sub(in.Amount)
		newState := dombilling.ClassifyBalance(doc.GrandTotal, doc.Balance)
		if newState == entity.StatePagada {
			// Residuo dentro de la tolerancia: el saldo se liquida a cero.
			doc.Balance = decimal.Zero
		}
		if err := dombilling.Transition(doc, newState); err != nil {
			return err
		}
		return docRepo.UpdateBalanceAndState(doc)
	})
	if err != nil {
		return nil, err
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionPayment,
		TableName: "payments", RecordID: payment.ID, After: payment,
	})

	return &dto.PaymentResponse{
		PaymentID:    payment.ID,
		DocumentID:   doc.ID,
		Amount:       payment.Amount,
		NewBalance:   doc.Balance,
		NewState:     doc.State,
		AuditWarning: audit.WarningMessage(auditErr),
	}, nil
}

// ApplyDebitAdjustment sube el saldo de un documento vivo (nota de débito,
// intereses). Es la única operación que incrementa un saldo, y nunca lo deja
// por encima del total más los ajustes acumulados del documento.
func (uc *PaymentUseCase) ApplyDebitAdjustment(ctx context.Context, companyID, actor, documentID string, in dto.DebitAdjustmentRequest) (*dto.PaymentResponse, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("amount", "el monto del ajuste debe ser mayor que cero")
	}

	var doc *entity.Document
	err := uc.txRunner.RunBilling(ctx, func(
		docRepo repository.DocumentRepository,
		_ repository.PaymentRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		doc, err = lockDocument(docRepo, companyID, documentID)
		if err != nil {
			return err
		}
		if doc.State == entity.StateAnulada {
			return domain.Conflictf("no se puede ajustar un documento anulado")
		}
		newBalance := doc.Balance.Add(in.Amount)
		if newBalance.GreaterThan(doc.GrandTotal) {
			return domain.Validationf("amount", "el ajuste dejaría el saldo %s por encima del total %s",
				newBalance.StringFixed(2), doc.GrandTotal.StringFixed(2))
		}

		doc.Balance = newBalance
		// Única vía que regresa una PAGADA a PARCIAL; la tabla de transiciones
		// no la contempla y aquí se asigna directo.
		doc.State = dombilling.ClassifyBalance(doc.GrandTotal, doc.Balance)
		return docRepo.UpdateBalanceAndState(doc)
	})
	if err != nil {
		return nil, err
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionDebit,
		TableName: documentTable(doc.Family), RecordID: doc.ID,
		After: map[string]any{"amount": in.Amount, "reason": in.Reason, "new_balance": doc.Balance},
	})

	return &dto.PaymentResponse{
		DocumentID:   doc.ID,
		Amount:       in.Amount,
		NewBalance:   doc.Balance,
		NewState:     doc.State,
		AuditWarning: audit.WarningMessage(auditErr),
	}, nil
}

// lockDocument carga el documento con bloqueo de fila y valida pertenencia.
func lockDocument(docRepo repository.DocumentRepository, companyID, documentID string) (*entity.Document, error) {
	doc, err := docRepo.GetByIDForUpdate(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}
