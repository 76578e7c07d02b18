package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	pkghacienda "github.com/tu-usuario/facturacion-pro/pkg/hacienda"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// SubmitDocumentUseCase orquesta el envío del comprobante electrónico a
// Hacienda: valida precondiciones, arma el XML, entrega al gateway y registra
// el resultado. El estado de envío es independiente del estado de pago.
type SubmitDocumentUseCase struct {
	docRepo     repository.DocumentRepository
	companyRepo repository.CompanyRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	builder     PayloadBuilder
	gateway     SubmissionGateway
	catalog     FiscalCatalog
	recorder    *audit.Recorder
	log         *logger.Logger
}

// NewSubmitDocumentUseCase construye el caso de uso.
func NewSubmitDocumentUseCase(
	docRepo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	builder PayloadBuilder,
	gateway SubmissionGateway,
	catalog FiscalCatalog,
	recorder *audit.Recorder,
	log *logger.Logger,
) *SubmitDocumentUseCase {
	return &SubmitDocumentUseCase{
		docRepo:     docRepo,
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		builder:     builder,
		gateway:     gateway,
		catalog:     catalog,
		recorder:    recorder,
		log:         log,
	}
}

// Submit envía el comprobante. Un documento RECHAZADO o en ERROR puede
// reenviarse; uno ACEPTADO no. Las precondiciones faltantes se reportan todas
// juntas, no una por una.
func (uc *SubmitDocumentUseCase) Submit(ctx context.Context, companyID, actor, documentID string) (*dto.SubmissionStatusResponse, error) {
	doc, err := uc.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !doc.IsReceivable() {
		return nil, domain.Validationf("document_id", "solo las facturas de venta se envían a Hacienda")
	}
	if doc.State == entity.StateAnulada {
		return nil, domain.Conflictf("un documento anulado no se envía a Hacienda")
	}
	switch doc.SubmissionStatus {
	case entity.SubmissionAceptado:
		return nil, domain.Conflictf("el comprobante ya fue aceptado por Hacienda (ref %s)", doc.AuthorityRef)
	case entity.SubmissionPendiente, entity.SubmissionEnviado:
		return nil, domain.Conflictf("el comprobante tiene un envío en curso (%s); consulte el estado", doc.SubmissionStatus)
	}

	payload, err := uc.preparePayload(ctx, doc)
	if err != nil {
		return nil, err
	}

	// Marcar el envío en curso antes de tocar la red: si el proceso muere a
	// mitad, el documento queda PENDIENTE y no SIN_ENVIAR.
	doc.SubmissionStatus = entity.SubmissionPendiente
	doc.SubmissionErrors = ""
	if err := uc.docRepo.UpdateSubmission(doc); err != nil {
		return nil, err
	}

	ack, err := uc.gateway.Submit(ctx, doc.Clave, payload)
	now := time.Now()
	if err != nil {
		doc.SubmissionStatus = entity.SubmissionError
		doc.SubmissionErrors = err.Error()
		if updErr := uc.docRepo.UpdateSubmission(doc); updErr != nil {
			uc.log.Error().Err(updErr).Str("document_id", doc.ID).
				Msg("no se pudo registrar el error de envío")
		}
		return nil, &domain.DependencyError{Op: "hacienda: enviar comprobante", Err: err}
	}

	doc.SubmittedAt = &now
	doc.SubmissionStatus = ack.Status
	doc.AuthorityRef = ack.AuthorityRef
	if ack.Status == entity.SubmissionRechazado {
		doc.SubmissionErrors = ack.Message
	}
	if err := uc.docRepo.UpdateSubmission(doc); err != nil {
		return nil, err
	}

	auditErr := uc.recorder.Record(audit.Entry{
		CompanyID: companyID, Actor: actor, Action: entity.ActionSubmission,
		TableName: documentTable(doc.Family), RecordID: doc.ID,
		After: map[string]any{
			"clave":         doc.Clave,
			"status":        doc.SubmissionStatus,
			"authority_ref": doc.AuthorityRef,
			"errors":        doc.SubmissionErrors,
		},
	})

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("clave", doc.Clave).
		Str("status", doc.SubmissionStatus).
		Msg("comprobante enviado a Hacienda")

	resp := submissionStatusResponse(doc)
	resp.AuditWarning = audit.WarningMessage(auditErr)
	return resp, nil
}

// preparePayload valida todas las precondiciones fiscales de una vez y arma el XML.
func (uc *SubmitDocumentUseCase) preparePayload(ctx context.Context, doc *entity.Document) ([]byte, error) {
	var verrs domain.ValidationErrors

	if doc.Clave == "" {
		verrs.Add("clave", "el documento no tiene clave; complete el perfil fiscal del emisor y recréelo")
	}

	company, err := uc.companyRepo.GetByID(doc.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || company.IdentificationNumber == "" {
		verrs.Add("company", "el emisor no tiene cédula registrada")
	}
	if company != nil && company.Email == "" {
		verrs.Add("company", "el emisor no tiene correo registrado")
	}

	client, err := uc.clientRepo.GetByID(doc.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		verrs.Add("client", "el cliente del documento no existe")
	} else {
		if client.IdentificationNumber == "" {
			verrs.Add("client", "el cliente no tiene cédula registrada")
		} else if err := pkghacienda.ValidateIdentification(client.IdentificationType, client.IdentificationNumber); err != nil {
			verrs.Add("client", "%s", err.Error())
		}
	}

	lines, err := uc.docRepo.GetLinesByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product)
	for i, line := range lines {
		if line.ProductID == nil {
			continue
		}
		product, err := uc.productRepo.GetByID(*line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			verrs.Add("lines", "línea %d: producto %s no existe", i+1, *line.ProductID)
			continue
		}
		products[product.ID] = product
		if err := pkghacienda.ValidateCabysCode(product.CabysCode); err != nil {
			verrs.Add("lines", "línea %d: producto %s: %v", i+1, product.Name, err)
			continue
		}
		uc.checkCatalog(ctx, &verrs, i+1, product)
	}

	if verrs.HasErrors() {
		return nil, &verrs
	}
	return uc.builder.BuildInvoiceXML(SubmissionPayload{
		Company:  company,
		Client:   client,
		Document: doc,
		Lines:    lines,
		Products: products,
	})
}

// checkCatalog contrasta el CABYS contra el catálogo oficial. El catálogo es
// consultivo: si el servicio no responde se registra y el envío continúa.
func (uc *SubmitDocumentUseCase) checkCatalog(ctx context.Context, verrs *domain.ValidationErrors, lineNo int, product *entity.Product) {
	if uc.catalog == nil {
		return
	}
	info, err := uc.catalog.LookupFiscalCode(ctx, product.CabysCode)
	if err != nil {
		uc.log.Warn().Err(err).Str("cabys", product.CabysCode).
			Msg("catálogo CABYS no disponible; se omite la verificación")
		return
	}
	if info == nil {
		verrs.Add("lines", "línea %d: el código CABYS %s del producto %s no existe en el catálogo",
			lineNo, product.CabysCode, product.Name)
	}
}

func submissionStatusResponse(doc *entity.Document) *dto.SubmissionStatusResponse {
	return &dto.SubmissionStatusResponse{
		DocumentID:       doc.ID,
		Clave:            doc.Clave,
		Consecutivo:      doc.Consecutivo,
		SubmissionStatus: doc.SubmissionStatus,
		AuthorityRef:     doc.AuthorityRef,
		Errors:           doc.SubmissionErrors,
	}
}
