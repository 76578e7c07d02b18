package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

func newSubmitUseCase(env *billingEnv, gateway *fakeGateway, catalog *fakeCatalog) *SubmitDocumentUseCase {
	// Con puntero nil la interfaz debe quedar nil, no nil tipado.
	var fiscalCatalog FiscalCatalog
	if catalog != nil {
		fiscalCatalog = catalog
	}
	return NewSubmitDocumentUseCase(
		env.docRepo, env.companyRepo, env.clientRepo, env.productRepo,
		&fakeBuilder{xml: []byte("<FacturaElectronica/>")},
		gateway, fiscalCatalog, env.recorder, testLogger(),
	)
}

func TestSubmit_SinCatalogoConfiguradoNoConsulta(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{ack: &SubmissionAck{Status: entity.SubmissionAceptado}}
	uc := newSubmitUseCase(env, gateway, nil)

	// Sin catálogo configurado la verificación CABYS se omite y el envío procede.
	resp, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, resp.SubmissionStatus)
	assert.Equal(t, 1, gateway.calls)
}

func TestSubmit_Aceptado(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{ack: &SubmissionAck{
		Status: entity.SubmissionAceptado, AuthorityRef: "ref-123",
	}}
	uc := newSubmitUseCase(env, gateway, nil)

	resp, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.SubmissionAceptado, resp.SubmissionStatus)
	assert.Equal(t, "ref-123", resp.AuthorityRef)
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, []byte("<FacturaElectronica/>"), gateway.payload)

	stored, err := env.docRepo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, stored.SubmissionStatus)
	require.NotNil(t, stored.SubmittedAt)
}

func TestSubmit_RechazadoGuardaMotivoYPermiteReenvio(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{ack: &SubmissionAck{
		Status: entity.SubmissionRechazado, Message: "cédula del receptor inválida",
	}}
	uc := newSubmitUseCase(env, gateway, nil)
	ctx := context.Background()

	resp, err := uc.Submit(ctx, testCompanyID, testActor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionRechazado, resp.SubmissionStatus)
	assert.Contains(t, resp.Errors, "cédula")

	// Tras corregir, el rechazado puede reenviarse.
	gateway.ack = &SubmissionAck{Status: entity.SubmissionAceptado, AuthorityRef: "ref-9"}
	resp, err = uc.Submit(ctx, testCompanyID, testActor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, resp.SubmissionStatus)
	assert.Empty(t, resp.Errors, "el motivo de rechazo anterior se limpia")
}

func TestSubmit_ErrorDeRedDejaEstadoError(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{err: errors.New("connection refused")}
	uc := newSubmitUseCase(env, gateway, nil)

	_, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.ErrorIs(t, err, domain.ErrDependency)

	stored, getErr := env.docRepo.GetByID(doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.SubmissionError, stored.SubmissionStatus)
	assert.Contains(t, stored.SubmissionErrors, "connection refused")
}

func TestSubmit_YaAceptadoEsConflicto(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{ack: &SubmissionAck{Status: entity.SubmissionAceptado, AuthorityRef: "ref-1"}}
	uc := newSubmitUseCase(env, gateway, nil)
	ctx := context.Background()

	_, err := uc.Submit(ctx, testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	_, err = uc.Submit(ctx, testCompanyID, testActor, doc.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, gateway.calls, "no hubo segundo envío")
}

func TestSubmit_PrecondicionesSeReportanJuntas(t *testing.T) {
	env := newBillingEnv()
	// Cliente sin cédula y producto sin CABYS: ambas violaciones en una sola respuesta.
	env.clientRepo.clients[testClientID].IdentificationNumber = ""
	env.productRepo.products[testProductID].CabysCode = "123"
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{}
	uc := newSubmitUseCase(env, gateway, nil)

	_, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verrs *domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs.Errors), 2, "se enumeran todas las precondiciones faltantes")
	assert.Equal(t, 0, gateway.calls, "con precondiciones faltantes no se toca la red")
}

func TestSubmit_IdentificacionInvalidaConservaElMensaje(t *testing.T) {
	env := newBillingEnv()
	// El número trae un '%': el mensaje de validación debe llegar textual,
	// sin pasar por interpolación de formato.
	env.clientRepo.clients[testClientID].IdentificationNumber = "10%870654"
	doc := createCreditDoc(t, env)
	gateway := &fakeGateway{}
	uc := newSubmitUseCase(env, gateway, nil)

	_, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "10%870654")
	assert.NotContains(t, err.Error(), "(MISSING")
	assert.Equal(t, 0, gateway.calls)
}

func TestSubmit_CabysDesconocidoEnCatalogo(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	catalog := &fakeCatalog{known: map[string]*FiscalCodeInfo{}} // catálogo vacío
	uc := newSubmitUseCase(env, &fakeGateway{}, catalog)

	_, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmit_CatalogoCaidoNoBloqueaElEnvio(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	catalog := &fakeCatalog{err: errors.New("timeout")}
	gateway := &fakeGateway{ack: &SubmissionAck{Status: entity.SubmissionAceptado}}
	uc := newSubmitUseCase(env, gateway, catalog)

	// El catálogo es consultivo: si no responde, el envío continúa.
	resp, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, resp.SubmissionStatus)
}

func TestSubmit_SoloFacturasDeVenta(t *testing.T) {
	env := newBillingEnv()
	resp, err := env.createUseCase().CreateDocument(
		context.Background(), testCompanyID, testActor, entity.FamilyPayable,
		dto.CreateDocumentRequest{
			CounterpartyID: testProviderID,
			Terms:          entity.TermsCredito,
			DueDate:        "2026-10-01",
			Lines:          []dto.LineItemRequest{{ProductID: testProductID, Quantity: dec("1")}},
		})
	require.NoError(t, err)

	uc := newSubmitUseCase(env, &fakeGateway{}, nil)
	_, err = uc.Submit(context.Background(), testCompanyID, testActor, resp.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmit_AnuladaNoSeEnvia(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	_, err := env.annulUseCase().Annul(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	uc := newSubmitUseCase(env, &fakeGateway{}, nil)
	_, err = uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmit_AdvertenciaDeAuditoriaNoRevierte(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	env.auditRepo.appendErr = assert.AnError
	gateway := &fakeGateway{ack: &SubmissionAck{Status: entity.SubmissionAceptado}}
	uc := newSubmitUseCase(env, gateway, nil)

	resp, err := uc.Submit(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err, "el fallo de auditoría no revierte el envío")
	assert.Equal(t, entity.SubmissionAceptado, resp.SubmissionStatus)
	assert.NotEmpty(t, resp.AuditWarning)

	stored, err := env.docRepo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, stored.SubmissionStatus)
}
