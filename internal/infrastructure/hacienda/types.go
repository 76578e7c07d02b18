// Package hacienda implementa los adaptadores hacia el API de comprobantes
// electrónicos de Hacienda (Costa Rica, versión 4.3): armado del XML, entrega
// al API de recepción y consulta del catálogo CABYS.
package hacienda

const (
	// AppEnvProd ambiente de producción de Hacienda.
	AppEnvProd = "prod"
	// AppEnvStag ambiente sandbox (stag.comprobanteselectronicos).
	AppEnvStag = "stag"
	// AppEnvDev identificador local: no envía al API, simula aceptación.
	AppEnvDev = "dev"

	apiURLProd = "https://api.comprobanteselectronicos.go.cr/recepcion/v1"
	apiURLStag = "https://api-sandbox.comprobanteselectronicos.go.cr/recepcion/v1"

	// Namespace oficial del esquema FacturaElectronica v4.3.
	nsFacturaElectronica = "https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/facturaElectronica"
	nsXsi                = "http://www.w3.org/2001/XMLSchema-instance"
	nsXsd                = "http://www.w3.org/2001/XMLSchema"
)

// apiBaseURL resuelve la URL del API de recepción según ambiente, salvo override.
func apiBaseURL(environment, override string) string {
	if override != "" {
		return override
	}
	if environment == AppEnvProd {
		return apiURLProd
	}
	return apiURLStag
}
