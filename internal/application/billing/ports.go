package billing

import (
	"context"

	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye los
// repos de documentos, abonos e inventario. O todos los efectos quedan, o ninguno:
// "documento creado pero stock sin ajustar" es estructuralmente imposible.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		paymentRepo repository.PaymentRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockReconciler puerto hacia el reconciliador de inventario; se invoca con el
// ProductRepository atado a la transacción del caller.
type StockReconciler interface {
	Apply(
		productRepo repository.ProductRepository,
		effect dombilling.StockEffect,
		lines []*entity.LineItem,
	) ([]domain.StockLineFailure, error)
}

// SubmissionAck respuesta del gateway de Hacienda tras entregar un comprobante.
type SubmissionAck struct {
	Status       string // entity.SubmissionAceptado | SubmissionRechazado | SubmissionEnviado (pendiente de resolución)
	AuthorityRef string
	Message      string
}

// SubmissionGateway puerto de salida hacia el API de recepción de Hacienda.
// La firma criptográfica y el transporte son responsabilidad del adaptador;
// el caso de uso solo prepara el payload e interpreta la respuesta.
type SubmissionGateway interface {
	Submit(ctx context.Context, clave string, payload []byte) (*SubmissionAck, error)
}

// SubmissionPayload insumos para armar el XML del comprobante electrónico.
type SubmissionPayload struct {
	Company  *entity.Company
	Client   *entity.Client
	Document *entity.Document
	Lines    []*entity.LineItem
	Products map[string]*entity.Product // por ID; aporta CABYS y unidad de medida
}

// PayloadBuilder arma el XML v4.3 del comprobante a partir de los datos ya
// validados por el orquestador de envío.
type PayloadBuilder interface {
	BuildInvoiceXML(p SubmissionPayload) ([]byte, error)
}

// FiscalCodeInfo resultado de consultar un código CABYS en el catálogo fiscal.
type FiscalCodeInfo struct {
	Code        string
	Description string
	TaxRateFlag string
}

// FiscalCatalog puerto de consulta del catálogo de códigos fiscales (CABYS).
type FiscalCatalog interface {
	// LookupFiscalCode devuelve nil, nil si el código no existe en el catálogo.
	LookupFiscalCode(ctx context.Context, code string) (*FiscalCodeInfo, error)
}
