package billing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	domhacienda "github.com/tu-usuario/facturacion-pro/internal/domain/hacienda"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	pkghacienda "github.com/tu-usuario/facturacion-pro/pkg/hacienda"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// FiscalParams parámetros fiscales del emisor para la clave del comprobante.
type FiscalParams struct {
	Situacion string // "1" normal, "2" contingencia, "3" sin internet
}

// CreateDocumentUseCase crea un documento (por cobrar o por pagar) con sus
// líneas, ajusta el inventario y, en condición de contado, registra el pago
// implícito, todo en una sola transacción.
type CreateDocumentUseCase struct {
	txRunner     BillingTxRunner
	reconciler   StockReconciler
	clientRepo   repository.ClientRepository
	providerRepo repository.ProviderRepository
	companyRepo  repository.CompanyRepository
	productRepo  repository.ProductRepository
	docRepo      repository.DocumentRepository
	pricing      *PricingResolver
	recorder     *audit.Recorder
	fiscal       FiscalParams
	log          *logger.Logger
}

// NewCreateDocumentUseCase construye el caso de uso.
func NewCreateDocumentUseCase(
	txRunner BillingTxRunner,
	reconciler StockReconciler,
	clientRepo repository.ClientRepository,
	providerRepo repository.ProviderRepository,
	companyRepo repository.CompanyRepository,
	productRepo repository.ProductRepository,
	docRepo repository.DocumentRepository,
	pricing *PricingResolver,
	recorder *audit.Recorder,
	fiscal FiscalParams,
	log *logger.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{
		txRunner:     txRunner,
		reconciler:   reconciler,
		clientRepo:   clientRepo,
		providerRepo: providerRepo,
		companyRepo:  companyRepo,
		productRepo:  productRepo,
		docRepo:      docRepo,
		pricing:      pricing,
		recorder:     recorder,
		fiscal:       fiscal,
		log:          log,
	}
}

// CreateDocument valida, resuelve precios, calcula totales y persiste el
// documento con sus efectos. family la fija el endpoint (factura vs factura de
// compra), nunca el body.
func (uc *CreateDocumentUseCase) CreateDocument(ctx context.Context, companyID, actor, family string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if in.CounterpartyID == "" {
		return nil, domain.Validationf("counterparty_id", "el cliente o proveedor es obligatorio")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Validationf("lines", "el documento debe tener al menos una línea")
	}

	terms, dueDate, err := uc.validateTerms(in)
	if err != nil {
		return nil, err
	}
	if err := uc.checkCounterparty(companyID, family, in.CounterpartyID); err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "CRC"
	}

	now := time.Now()
	docID := uuid.New().String()

	resolver := &lineResolver{productRepo: uc.productRepo, pricing: uc.pricing, log: uc.log}
	inputs, err := resolver.resolve(family, in.CounterpartyID, in.Lines)
	if err != nil {
		return nil, err
	}
	lines, totals, err := BuildLines(family, docID, in.TaxRate, inputs)
	if err != nil {
		return nil, err
	}
	if !HasBillableLine(lines) {
		return nil, domain.Validationf("lines", "todas las líneas tienen cantidad cero; nada que facturar")
	}

	doc := &entity.Document{
		ID:               docID,
		CompanyID:        companyID,
		Family:           family,
		CounterpartyID:   in.CounterpartyID,
		IssueDate:        now,
		DueDate:          dueDate,
		Terms:            terms,
		Currency:         currency,
		TaxRate:          in.TaxRate,
		Subtotal:         totals.Subtotal,
		TaxTotal:         totals.TaxTotal,
		GrandTotal:       totals.GrandTotal,
		Description:      in.Description,
		SubmissionStatus: entity.SubmissionSinEnviar,
		Version:          1,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Contado: nace pagado, con saldo cero y pago implícito por el total.
	var implicitPayment *entity.Payment
	if terms == entity.TermsContado {
		doc.State = entity.StatePagada
		doc.Balance = decimal.Zero
		method := in.PaymentMethod
		if method == "" {
			method = pkghacienda.MedioEfectivo
		}
		if !pkghacienda.ValidPaymentMethodCodes[method] {
			return nil, domain.Validationf("payment_method", "medio de pago desconocido: %q", method)
		}
		implicitPayment = &entity.Payment{
			ID:         uuid.New().String(),
			DocumentID: docID,
			Date:       now,
			Amount:     totals.GrandTotal,
			Method:     method,
			Currency:   currency,
			Reference:  "pago de contado",
			CreatedBy:  actor,
			CreatedAt:  now,
		}
	} else {
		doc.Balance = totals.GrandTotal
		// Un crédito de total cero (cortesía, solo líneas sin precio) nace
		// pagado: el estado se clasifica por saldo, no se asume PENDIENTE.
		doc.State = dombilling.ClassifyBalance(totals.GrandTotal, doc.Balance)
	}

	var stockWarnings []domain.StockLineFailure
	err = uc.txRunner.RunBilling(ctx, func(
		docRepo repository.DocumentRepository,
		paymentRepo repository.PaymentRepository,
		productRepo repository.ProductRepository,
	) error {
		// 1) Clave y consecutivo fiscal (solo por cobrar; la secuencia es
		// atómica dentro de la tx).
		if family == entity.FamilyReceivable {
			if err := uc.assignClave(docRepo, doc, now); err != nil {
				return err
			}
		}

		// 2) Cabecera y líneas.
		if err := docRepo.Create(doc); err != nil {
			return err
		}
		for _, line := range lines {
			if err := docRepo.CreateLine(line); err != nil {
				return err
			}
		}

		// 3) Ajustes de inventario, línea por línea. Un fallo de negocio en una
		// línea no tumba la transacción: se acumula y se reporta. Un fallo de
		// infraestructura sí aborta todo.
		warnings, err := uc.reconciler.Apply(productRepo, dombilling.StockEffectOnCreate(family), lines)
		if err != nil {
			return err
		}
		stockWarnings = warnings

		// 4) Pago implícito de contado, atómico con la creación.
		if implicitPayment != nil {
			if err := paymentRepo.Create(implicitPayment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionCreate,
		TableName: documentTable(family), RecordID: doc.ID, After: doc,
	})
	if implicitPayment != nil {
		payErr := uc.recorder.Record(audit.Entry{
			CompanyID: companyID, Actor: actor, Action: entity.ActionPayment,
			TableName: "payments", RecordID: implicitPayment.ID, After: implicitPayment,
		})
		if auditErr == nil {
			auditErr = payErr
		}
	}

	resp := documentToResponse(doc, lines, time.Now())
	resp.StockWarnings = stockWarnings
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}

// validateTerms valida condición de pago y fecha de vencimiento.
func (uc *CreateDocumentUseCase) validateTerms(in dto.CreateDocumentRequest) (string, *time.Time, error) {
	switch in.Terms {
	case entity.TermsContado:
		if in.DueDate != "" {
			return "", nil, domain.Validationf("due_date", "un documento de contado no lleva fecha de vencimiento")
		}
		return entity.TermsContado, nil, nil
	case entity.TermsCredito:
		if in.DueDate == "" {
			return "", nil, domain.Validationf("due_date", "un documento a crédito requiere fecha de vencimiento")
		}
		due, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return "", nil, domain.Validationf("due_date", "fecha inválida %q, formato esperado YYYY-MM-DD", in.DueDate)
		}
		return entity.TermsCredito, &due, nil
	default:
		return "", nil, domain.Validationf("terms", "condición de pago desconocida: %q (CONTADO o CREDITO)", in.Terms)
	}
}

// checkCounterparty valida que el cliente o proveedor exista y sea de la empresa.
func (uc *CreateDocumentUseCase) checkCounterparty(companyID, family, counterpartyID string) error {
	if family == entity.FamilyReceivable {
		client, err := uc.clientRepo.GetByID(counterpartyID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.Validationf("counterparty_id", "cliente %s no existe", counterpartyID)
		}
		if client.CompanyID != companyID {
			return domain.ErrForbidden
		}
		return nil
	}
	provider, err := uc.providerRepo.GetByID(counterpartyID)
	if err != nil {
		return err
	}
	if provider == nil {
		return domain.Validationf("counterparty_id", "proveedor %s no existe", counterpartyID)
	}
	if provider.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// assignClave genera consecutivo y clave del comprobante con el perfil fiscal
// del emisor. Si el perfil está incompleto el documento igual se crea, solo que
// sin clave (no podrá enviarse hasta completar el perfil).
func (uc *CreateDocumentUseCase) assignClave(docRepo repository.DocumentRepository, doc *entity.Document, now time.Time) error {
	company, err := uc.companyRepo.GetByID(doc.CompanyID)
	if err != nil {
		return err
	}
	if company == nil || company.IdentificationNumber == "" {
		uc.log.Warn().
			Str("document_id", doc.ID).
			Msg("perfil fiscal del emisor incompleto; el documento se crea sin clave")
		return nil
	}

	seq, err := docRepo.NextSequence(doc.CompanyID, pkghacienda.DocTypeFacturaElectronica)
	if err != nil {
		return err
	}
	consecutivo, err := domhacienda.BuildConsecutivo(domhacienda.ConsecutivoParams{
		Sucursal: defaultStr(company.Sucursal, "1"),
		Terminal: defaultStr(company.Terminal, "1"),
		DocType:  pkghacienda.DocTypeFacturaElectronica,
		Sequence: seq,
	})
	if err != nil {
		return fmt.Errorf("generar consecutivo: %w", err)
	}
	security, err := securityCode()
	if err != nil {
		return fmt.Errorf("generar código de seguridad: %w", err)
	}
	clave, err := domhacienda.BuildClave(domhacienda.ClaveParams{
		IssueDate:    now,
		EmitterID:    company.IdentificationNumber,
		Consecutivo:  consecutivo,
		Situacion:    defaultStr(uc.fiscal.Situacion, pkghacienda.SituacionNormal),
		SecurityCode: security,
	})
	if err != nil {
		return fmt.Errorf("generar clave: %w", err)
	}
	doc.Consecutivo = consecutivo
	doc.Clave = clave
	return nil
}

// securityCode genera los 8 dígitos aleatorios de la clave.
func securityCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func documentTable(family string) string {
	if family == entity.FamilyPayable {
		return "supplier_bills"
	}
	return "invoices"
}

// documentToResponse arma la respuesta con el estado efectivo (vencimiento derivado).
func documentToResponse(doc *entity.Document, lines []*entity.LineItem, today time.Time) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:               doc.ID,
		Family:           doc.Family,
		CounterpartyID:   doc.CounterpartyID,
		IssueDate:        doc.IssueDate.Format("2006-01-02"),
		Terms:            doc.Terms,
		Currency:         doc.Currency,
		Subtotal:         doc.Subtotal,
		TaxTotal:         doc.TaxTotal,
		GrandTotal:       doc.GrandTotal,
		Balance:          doc.Balance,
		State:            dombilling.EffectiveState(doc, today),
		Description:      doc.Description,
		Clave:            doc.Clave,
		Consecutivo:      doc.Consecutivo,
		SubmissionStatus: doc.SubmissionStatus,
		Lines:            make([]dto.LineItemResponse, 0, len(lines)),
	}
	if doc.DueDate != nil {
		resp.DueDate = doc.DueDate.Format("2006-01-02")
	}
	for _, l := range lines {
		lr := dto.LineItemResponse{
			ID:          l.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			BaseAmount:  l.BaseAmount,
			TaxAmount:   l.TaxAmount,
			LineTotal:   l.LineTotal,
		}
		if l.ProductID != nil {
			lr.ProductID = *l.ProductID
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}
