package hacienda_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-pro/internal/domain/hacienda"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestBuildClave valida que la clave de 50 dígitos coincide exactamente con el
// vector de referencia para parámetros conocidos.
//
// Este test es el "canario en la mina" de la integración con Hacienda: si
// alguien reordena los segmentos, cambia el relleno de ceros o el formato de
// fecha, el test falla de inmediato.
//
// Vector (armado a mano):
//
//	Clave = Pais(506) + DDMMYY(050326) + Emisor(003101123456) +
//	        Consecutivo(00100001010000000042) + Situacion(1) + Seguridad(12345678)
// ──────────────────────────────────────────────────────────────────────────────

const (
	testClaveExpected       = "50605032600310112345600100001010000000042112345678"
	testConsecutivoExpected = "00100001010000000042"
)

func testIssueDate() time.Time {
	return time.Date(2026, time.March, 5, 10, 30, 0, 0, time.UTC)
}

func TestBuildConsecutivo_VectorExacto(t *testing.T) {
	got, err := hacienda.BuildConsecutivo(hacienda.ConsecutivoParams{
		Sucursal: "1",
		Terminal: "1",
		DocType:  "01",
		Sequence: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, testConsecutivoExpected, got)
	assert.Len(t, got, hacienda.ConsecutivoLength)
}

func TestBuildClave_VectorExacto(t *testing.T) {
	clave, err := hacienda.BuildClave(hacienda.ClaveParams{
		IssueDate:    testIssueDate(),
		EmitterID:    "3101123456",
		Consecutivo:  testConsecutivoExpected,
		Situacion:    "1",
		SecurityCode: "12345678",
	})
	require.NoError(t, err, "BuildClave no debe fallar con parámetros válidos")
	assert.Equal(t, testClaveExpected, clave,
		"la clave debe coincidir exactamente con el vector de referencia")
	assert.Len(t, clave, hacienda.ClaveLength)
}

func TestBuildClave_Determinista(t *testing.T) {
	params := hacienda.ClaveParams{
		IssueDate:    testIssueDate(),
		EmitterID:    "3101123456",
		Consecutivo:  testConsecutivoExpected,
		Situacion:    "1",
		SecurityCode: "12345678",
	}
	c1, err1 := hacienda.BuildClave(params)
	c2, err2 := hacienda.BuildClave(params)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, c1, c2, "los mismos parámetros siempre producen la misma clave")
}

func TestBuildClave_Invalidos(t *testing.T) {
	base := hacienda.ClaveParams{
		IssueDate:    testIssueDate(),
		EmitterID:    "3101123456",
		Consecutivo:  testConsecutivoExpected,
		Situacion:    "1",
		SecurityCode: "12345678",
	}

	cases := []struct {
		name   string
		mutate func(*hacienda.ClaveParams)
	}{
		{"sin fecha", func(p *hacienda.ClaveParams) { p.IssueDate = time.Time{} }},
		{"emisor vacío", func(p *hacienda.ClaveParams) { p.EmitterID = "" }},
		{"emisor no numérico", func(p *hacienda.ClaveParams) { p.EmitterID = "31011234AB" }},
		{"consecutivo corto", func(p *hacienda.ClaveParams) { p.Consecutivo = "123" }},
		{"situación inválida", func(p *hacienda.ClaveParams) { p.Situacion = "9" }},
		{"seguridad larga", func(p *hacienda.ClaveParams) { p.SecurityCode = "123456789" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := hacienda.BuildClave(p)
			assert.Error(t, err)
		})
	}
}

func TestBuildConsecutivo_Invalidos(t *testing.T) {
	base := hacienda.ConsecutivoParams{Sucursal: "1", Terminal: "1", DocType: "01", Sequence: 1}

	t.Run("secuencia cero", func(t *testing.T) {
		p := base
		p.Sequence = 0
		_, err := hacienda.BuildConsecutivo(p)
		assert.Error(t, err)
	})
	t.Run("tipo de documento inválido", func(t *testing.T) {
		p := base
		p.DocType = "1"
		_, err := hacienda.BuildConsecutivo(p)
		assert.Error(t, err)
	})
	t.Run("sucursal excede tres dígitos", func(t *testing.T) {
		p := base
		p.Sucursal = "1234"
		_, err := hacienda.BuildConsecutivo(p)
		assert.Error(t, err)
	})
}
