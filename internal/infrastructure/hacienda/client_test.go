package hacienda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/pkg/config"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

const testClave = "50610032600310112345600100001010000000042100000042"

func testLog() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func restClient(baseURL, environment string) *RestClient {
	return NewRestClient(config.HaciendaConfig{
		Environment:    environment,
		APIBaseURL:     baseURL,
		TimeoutSeconds: 5,
	}, testLog())
}

func TestSubmitAmbienteDevSimulaAceptado(t *testing.T) {
	c := restClient("http://hacienda.invalid", AppEnvDev)

	ack, err := c.Submit(context.Background(), testClave, []byte("<FacturaElectronica/>"))
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionAceptado, ack.Status)
	assert.Equal(t, "DEV-"+testClave, ack.AuthorityRef)
}

func TestSubmitRecibidoYAceptado(t *testing.T) {
	var gotReq recepcionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/recepcion":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/recepcion/"):
			json.NewEncoder(w).Encode(recepcionStatus{Clave: testClave, Estado: "aceptado"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := restClient(srv.URL, AppEnvStag)
	ack, err := c.Submit(context.Background(), testClave, []byte("<FacturaElectronica/>"))
	require.NoError(t, err)

	assert.Equal(t, entity.SubmissionAceptado, ack.Status)
	assert.Equal(t, testClave, ack.AuthorityRef)
	// El emisor se deriva de la clave: cédula jurídica de 10 dígitos.
	assert.Equal(t, "02", gotReq.Emisor.TipoIdentificacion)
	assert.Equal(t, "3101123456", gotReq.Emisor.NumeroIdentificacion)
	assert.NotEmpty(t, gotReq.ComprobanteXML)
}

func TestSubmitRechazadoPorHacienda(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		json.NewEncoder(w).Encode(recepcionStatus{
			Clave:          testClave,
			Estado:         "rechazado",
			DetalleMensaje: "cliente no inscrito ante Hacienda",
		})
	}))
	defer srv.Close()

	ack, err := restClient(srv.URL, AppEnvStag).Submit(context.Background(), testClave, []byte("<x/>"))
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionRechazado, ack.Status)
	assert.Equal(t, "cliente no inscrito ante Hacienda", ack.Message)
}

func TestSubmitRechazoEstructural(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "clave ya fue recibida", http.StatusBadRequest)
	}))
	defer srv.Close()

	ack, err := restClient(srv.URL, AppEnvStag).Submit(context.Background(), testClave, []byte("<x/>"))
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionRechazado, ack.Status)
	assert.Contains(t, ack.Message, "clave ya fue recibida")
}

func TestSubmitErrorDeServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := restClient(srv.URL, AppEnvStag).Submit(context.Background(), testClave, []byte("<x/>"))
	assert.Error(t, err)
}

func TestSubmitEstadoEnProceso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		json.NewEncoder(w).Encode(recepcionStatus{Clave: testClave, Estado: "procesando"})
	}))
	defer srv.Close()

	ack, err := restClient(srv.URL, AppEnvStag).Submit(context.Background(), testClave, []byte("<x/>"))
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionEnviado, ack.Status)
}

func TestEmitterFromClave(t *testing.T) {
	idType, idNumber, err := emitterFromClave(testClave)
	require.NoError(t, err)
	assert.Equal(t, "02", idType)
	assert.Equal(t, "3101123456", idNumber)

	_, _, err = emitterFromClave("123")
	assert.Error(t, err)
}

func TestLookupFiscalCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("codigo") != "2101500000100" {
			json.NewEncoder(w).Encode([]cabysEntry{})
			return
		}
		json.NewEncoder(w).Encode([]cabysEntry{
			{Codigo: "2101500000100", Descripcion: "Café tostado molido", Impuesto: "13"},
		})
	}))
	defer srv.Close()

	catalog := NewCabysCatalog(config.HaciendaConfig{CatalogBaseURL: srv.URL, TimeoutSeconds: 5})

	info, err := catalog.LookupFiscalCode(context.Background(), "2101500000100")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Café tostado molido", info.Description)
	assert.Equal(t, "13", info.TaxRateFlag)

	info, err = catalog.LookupFiscalCode(context.Background(), "9999999999999")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestLookupFiscalCodeCatalogoCaido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	catalog := NewCabysCatalog(config.HaciendaConfig{CatalogBaseURL: srv.URL, TimeoutSeconds: 5})
	_, err := catalog.LookupFiscalCode(context.Background(), "2101500000100")
	assert.Error(t, err)
}
