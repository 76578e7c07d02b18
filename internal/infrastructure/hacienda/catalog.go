package hacienda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/pkg/config"
)

// CabysCatalog consulta el catálogo público CABYS de Hacienda
// (api.hacienda.go.cr/fe/cabys). Es una verificación consultiva: el orquestador
// de envío trata la caída del catálogo como advertencia, no como bloqueo.
type CabysCatalog struct {
	baseURL    string
	httpClient *http.Client
}

// NewCabysCatalog construye el cliente del catálogo.
func NewCabysCatalog(cfg config.HaciendaConfig) *CabysCatalog {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CabysCatalog{
		baseURL:    cfg.CatalogBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ billing.FiscalCatalog = (*CabysCatalog)(nil)

// cabysEntry fila del catálogo público.
type cabysEntry struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
	Impuesto    string `json:"impuesto"`
}

// LookupFiscalCode busca un código CABYS exacto. Devuelve nil, nil si el código
// no existe en el catálogo; error solo ante fallas de red o respuestas inválidas.
func (c *CabysCatalog) LookupFiscalCode(ctx context.Context, code string) (*billing.FiscalCodeInfo, error) {
	endpoint := c.baseURL + "?codigo=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("hacienda: creando consulta CABYS: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hacienda: consultando catálogo CABYS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hacienda: catálogo CABYS respondió %d", resp.StatusCode)
	}

	var entries []cabysEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("hacienda: decodificando respuesta del catálogo: %w", err)
	}
	for _, entry := range entries {
		if entry.Codigo == code {
			return &billing.FiscalCodeInfo{
				Code:        entry.Codigo,
				Description: entry.Descripcion,
				TaxRateFlag: entry.Impuesto,
			}, nil
		}
	}
	return nil, nil
}
