package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// createCreditDoc deja un documento a crédito de 5650 (5 * 1000 al 13%) listo
// para abonos.
func createCreditDoc(t *testing.T, env *billingEnv) *dto.DocumentResponse {
	t.Helper()
	resp, err := env.createUseCase().CreateDocument(
		context.Background(), testCompanyID, testActor, entity.FamilyReceivable,
		creditRequest(dto.LineItemRequest{ProductID: testProductID, Quantity: dec("5")}))
	require.NoError(t, err)
	require.True(t, resp.GrandTotal.Equal(dec("5650")))
	return resp
}

func TestApplyPayment_AbonosConservanElSaldo(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()
	ctx := context.Background()

	// Primer abono: 3000 -> PARCIAL con saldo 2650.
	p1, err := uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{
		Amount: dec("3000"), Method: "01",
	})
	require.NoError(t, err)
	assert.True(t, p1.NewBalance.Equal(dec("2650")), "saldo: %s", p1.NewBalance)
	assert.Equal(t, entity.StateParcial, p1.NewState)

	// Segundo abono por el resto -> PAGADA con saldo cero.
	p2, err := uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{
		Amount: dec("2650"), Method: "02",
	})
	require.NoError(t, err)
	assert.True(t, p2.NewBalance.IsZero())
	assert.Equal(t, entity.StatePagada, p2.NewState)

	// Conservación: suma de abonos == total original.
	sum, err := env.paymentRepo.SumByDocumentID(doc.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(doc.GrandTotal))
}

func TestApplyPayment_SobrepagoRechazadoSinCambiarEstado(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()

	_, err := uc.ApplyPayment(context.Background(), testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{
		Amount: dec("9999"), Method: "01",
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := env.docRepo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatePendiente, stored.State)
	assert.True(t, stored.Balance.Equal(doc.GrandTotal), "el saldo no se tocó")
	assert.Empty(t, env.paymentRepo.payments, "no quedó ningún abono registrado")
}

func TestApplyPayment_ResiduoDentroDeLaToleranciaLiquida(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()

	// Deja un residuo de 0.01: dentro de la tolerancia, el documento liquida
	// y el saldo se lleva a cero exacto.
	resp, err := uc.ApplyPayment(context.Background(), testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{
		Amount: dec("5649.99"), Method: "01",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatePagada, resp.NewState)
	assert.True(t, resp.NewBalance.IsZero(), "saldo: %s", resp.NewBalance)
}

func TestApplyPayment_MontosYEstadosInvalidos(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()
	ctx := context.Background()

	_, err := uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{Amount: dec("-10")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.ApplyPayment(ctx, testCompanyID, testActor, "no-existe", dto.ApplyPaymentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Documento ya pagado: conflicto.
	_, err = uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{Amount: dec("5650")})
	require.NoError(t, err)
	_, err = uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplyPayment_DocumentoAnuladoNoAdmiteAbonos(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	_, err := env.annulUseCase().Annul(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	_, err = env.paymentUseCase().ApplyPayment(context.Background(), testCompanyID, testActor, doc.ID,
		dto.ApplyPaymentRequest{Amount: dec("100")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDebitAdjustment_RegresaPagadaAParcial(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()
	ctx := context.Background()

	_, err := uc.ApplyPayment(ctx, testCompanyID, testActor, doc.ID, dto.ApplyPaymentRequest{Amount: dec("5650")})
	require.NoError(t, err)

	resp, err := uc.ApplyDebitAdjustment(ctx, testCompanyID, testActor, doc.ID, dto.DebitAdjustmentRequest{
		Amount: dec("500"), Reason: "intereses por mora",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StateParcial, resp.NewState)
	assert.True(t, resp.NewBalance.Equal(dec("500")))
}

func TestDebitAdjustment_NoSuperaElTotal(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	uc := env.paymentUseCase()

	// Saldo completo: cualquier ajuste lo dejaría por encima del total.
	_, err := uc.ApplyDebitAdjustment(context.Background(), testCompanyID, testActor, doc.ID,
		dto.DebitAdjustmentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDebitAdjustment_AnuladaEsConflicto(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	_, err := env.annulUseCase().Annul(context.Background(), testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	_, err = env.paymentUseCase().ApplyDebitAdjustment(context.Background(), testCompanyID, testActor, doc.ID,
		dto.DebitAdjustmentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplyPayment_AdvertenciaDeAuditoriaNoRevierte(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	env.auditRepo.appendErr = assert.AnError

	resp, err := env.paymentUseCase().ApplyPayment(context.Background(), testCompanyID, testActor, doc.ID,
		dto.ApplyPaymentRequest{Amount: dec("1000")})
	require.NoError(t, err, "el fallo de auditoría no revierte el abono")
	assert.NotEmpty(t, resp.AuditWarning)

	stored, err := env.docRepo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(dec("4650")), "el abono quedó aplicado")
}
