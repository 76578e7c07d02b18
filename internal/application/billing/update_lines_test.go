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

func TestUpdateLines_RecalculaTotalesYStock(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env) // 5 unidades, total 5650, stock 50 -> 45
	uc := env.updateLinesUseCase()

	resp, err := uc.UpdateLines(context.Background(), testCompanyID, testActor, doc.ID, dto.UpdateLinesRequest{
		Lines: []dto.LineItemRequest{{ProductID: testProductID, Quantity: dec("2")}},
	})
	require.NoError(t, err)

	// Totales recalculados desde el juego nuevo: 2 * 1000 al 13%.
	assert.True(t, resp.GrandTotal.Equal(dec("2260")), "total: %s", resp.GrandTotal)
	assert.True(t, resp.Balance.Equal(dec("2260")), "saldo = total en PENDIENTE")

	// Stock neto: se devolvieron 5 y se consumieron 2.
	assert.True(t, env.stock(testProductID).Equal(dec("48")), "stock: %s", env.stock(testProductID))

	// El juego viejo de líneas fue reemplazado.
	lines, err := env.docRepo.GetLinesByDocumentID(doc.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(dec("2")))
}

func TestUpdateLines_SoloPendiente(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	ctx := context.Background()

	_, err := env.paymentUseCase().ApplyPayment(ctx, testCompanyID, testActor, doc.ID,
		dto.ApplyPaymentRequest{Amount: dec("1000")})
	require.NoError(t, err)

	// Con abonos el documento está PARCIAL: la edición se rechaza.
	_, err = env.updateLinesUseCase().UpdateLines(ctx, testCompanyID, testActor, doc.ID, dto.UpdateLinesRequest{
		Lines: []dto.LineItemRequest{{ProductID: testProductID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateLines_AnuladaEsConflicto(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)
	ctx := context.Background()
	_, err := env.annulUseCase().Annul(ctx, testCompanyID, testActor, doc.ID)
	require.NoError(t, err)

	_, err = env.updateLinesUseCase().UpdateLines(ctx, testCompanyID, testActor, doc.ID, dto.UpdateLinesRequest{
		Lines: []dto.LineItemRequest{{ProductID: testProductID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateLines_RegistraAuditoriaDeEdicion(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)

	_, err := env.updateLinesUseCase().UpdateLines(context.Background(), testCompanyID, testActor, doc.ID,
		dto.UpdateLinesRequest{Lines: []dto.LineItemRequest{{ProductID: testProductID, Quantity: dec("3")}}})
	require.NoError(t, err)

	var actions []string
	for _, e := range env.auditRepo.entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, entity.ActionLineEdit)
}

func TestUpdateLines_SinLineas(t *testing.T) {
	env := newBillingEnv()
	doc := createCreditDoc(t, env)

	_, err := env.updateLinesUseCase().UpdateLines(context.Background(), testCompanyID, testActor, doc.ID,
		dto.UpdateLinesRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
