package hacienda

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	domhacienda "github.com/tu-usuario/facturacion-pro/internal/domain/hacienda"
	"github.com/tu-usuario/facturacion-pro/pkg/config"
	pkghacienda "github.com/tu-usuario/facturacion-pro/pkg/hacienda"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// RestClient entrega comprobantes al API de recepción de Hacienda.
// Usa net/http de la stdlib; el API es REST/JSON y no requiere librerías de terceros.
//
// En ambiente "dev" no hay llamada de red: el envío se simula como aceptado,
// igual que en desarrollo local no se firma contra el WS real.
type RestClient struct {
	baseURL     string
	environment string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewRestClient construye el cliente según la configuración de Hacienda.
func NewRestClient(cfg config.HaciendaConfig, log *logger.Logger) *RestClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RestClient{
		baseURL:     apiBaseURL(cfg.Environment, cfg.APIBaseURL),
		environment: cfg.Environment,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

var _ billing.SubmissionGateway = (*RestClient)(nil)

// recepcionRequest cuerpo JSON del POST /recepcion.
type recepcionRequest struct {
	Clave  string `json:"clave"`
	Fecha  string `json:"fecha"`
	Emisor struct {
		TipoIdentificacion   string `json:"tipoIdentificacion"`
		NumeroIdentificacion string `json:"numeroIdentificacion"`
	} `json:"emisor"`
	ComprobanteXML string `json:"comprobanteXml"`
}

// recepcionStatus respuesta del GET /recepcion/{clave}.
type recepcionStatus struct {
	Clave          string `json:"clave"`
	Estado         string `json:"ind-estado"`
	RespuestaXML   string `json:"respuesta-xml"`
	DetalleMensaje string `json:"DetalleMensaje"`
}

// Submit entrega el comprobante y devuelve el acuse. Una respuesta RECHAZADO no
// es un error de infraestructura: el ack contiene el motivo y el caller decide.
func (c *RestClient) Submit(ctx context.Context, clave string, payload []byte) (*billing.SubmissionAck, error) {
	if c.environment == AppEnvDev {
		c.log.Warn().
			Str("clave", clave).
			Msg("ambiente dev: envío a Hacienda simulado, no se llamó al API")
		return &billing.SubmissionAck{
			Status:       entity.SubmissionAceptado,
			AuthorityRef: "DEV-" + clave,
		}, nil
	}

	emitterType, emitterNumber, err := emitterFromClave(clave)
	if err != nil {
		return nil, err
	}

	req := recepcionRequest{
		Clave:          clave,
		Fecha:          time.Now().Format(time.RFC3339),
		ComprobanteXML: base64.StdEncoding.EncodeToString(payload),
	}
	req.Emisor.TipoIdentificacion = emitterType
	req.Emisor.NumeroIdentificacion = emitterNumber

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("hacienda: serializando solicitud de recepción: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recepcion", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hacienda: creando solicitud de recepción: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("hacienda: enviando comprobante %s: %w", clave, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusCreated:
		// Recibido: el estado final se resuelve consultando la clave.
		return c.queryStatus(ctx, clave)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Rechazo estructural del API (clave duplicada, XML inválido).
		return &billing.SubmissionAck{
			Status:  entity.SubmissionRechazado,
			Message: strings.TrimSpace(string(respBody)),
		}, nil
	default:
		return nil, fmt.Errorf("hacienda: API de recepción respondió %d: %s", resp.StatusCode, respBody)
	}
}

// queryStatus consulta el estado de procesamiento de una clave ya recibida.
func (c *RestClient) queryStatus(ctx context.Context, clave string) (*billing.SubmissionAck, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/recepcion/"+clave, nil)
	if err != nil {
		return nil, fmt.Errorf("hacienda: creando consulta de estado: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// El comprobante ya fue recibido; se reporta como en curso.
		c.log.Warn().Err(err).Str("clave", clave).Msg("no se pudo consultar estado; comprobante queda ENVIADO")
		return &billing.SubmissionAck{Status: entity.SubmissionEnviado, AuthorityRef: clave}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &billing.SubmissionAck{Status: entity.SubmissionEnviado, AuthorityRef: clave}, nil
	}

	var status recepcionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("hacienda: decodificando estado de %s: %w", clave, err)
	}

	ack := &billing.SubmissionAck{AuthorityRef: clave}
	switch strings.ToLower(status.Estado) {
	case "aceptado":
		ack.Status = entity.SubmissionAceptado
	case "rechazado":
		ack.Status = entity.SubmissionRechazado
		ack.Message = status.DetalleMensaje
		if ack.Message == "" {
			ack.Message = decodeRespuestaXML(status.RespuestaXML)
		}
	default:
		// "recibido" o "procesando": pendiente de resolución.
		ack.Status = entity.SubmissionEnviado
	}
	return ack, nil
}

// emitterFromClave extrae la cédula del emisor de la clave (posiciones 10-21)
// e infiere el tipo de identificación por longitud.
func emitterFromClave(clave string) (idType, idNumber string, err error) {
	if len(clave) != domhacienda.ClaveLength {
		return "", "", fmt.Errorf("hacienda: clave debe tener %d dígitos: %q", domhacienda.ClaveLength, clave)
	}
	idNumber = strings.TrimLeft(clave[9:21], "0")
	switch len(idNumber) {
	case 9:
		idType = pkghacienda.IDCedulaFisica
	case 10:
		idType = pkghacienda.IDCedulaJuridica
	case 11, 12:
		idType = pkghacienda.IDDimex
	default:
		return "", "", fmt.Errorf("hacienda: cédula de emisor inválida en la clave: %q", idNumber)
	}
	return idType, idNumber, nil
}

// decodeRespuestaXML extrae el texto del mensaje de respuesta (viene en base64).
func decodeRespuestaXML(encoded string) string {
	if encoded == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
