package hacienda

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	pkghacienda "github.com/tu-usuario/facturacion-pro/pkg/hacienda"
)

// XMLBuilder arma el XML de FacturaElectronica v4.3 a partir del payload ya
// validado por el orquestador de envío. No firma: la firma XAdES la agrega el
// gateway o un servicio externo antes de la entrega.
type XMLBuilder struct{}

// NewXMLBuilder crea el constructor de comprobantes.
func NewXMLBuilder() *XMLBuilder {
	return &XMLBuilder{}
}

var _ billing.PayloadBuilder = (*XMLBuilder)(nil)

// BuildInvoiceXML genera el documento FacturaElectronica v4.3 indentado, con
// declaración XML y namespaces del esquema oficial.
func (b *XMLBuilder) BuildInvoiceXML(p billing.SubmissionPayload) ([]byte, error) {
	if p.Document == nil || p.Company == nil || p.Client == nil {
		return nil, fmt.Errorf("hacienda: payload incompleto para armar el XML")
	}
	if len(p.Lines) == 0 {
		return nil, fmt.Errorf("hacienda: documento %s sin líneas de detalle", p.Document.ID)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("FacturaElectronica")
	root.CreateAttr("xmlns", nsFacturaElectronica)
	root.CreateAttr("xmlns:xsi", nsXsi)
	root.CreateAttr("xmlns:xsd", nsXsd)

	root.CreateElement("Clave").SetText(p.Document.Clave)
	root.CreateElement("NumeroConsecutivo").SetText(p.Document.Consecutivo)
	root.CreateElement("FechaEmision").SetText(p.Document.IssueDate.Format(time.RFC3339))

	b.writeEmisor(root, p.Company)
	b.writeReceptor(root, p.Client)
	b.writeCondicionVenta(root, p.Document)

	detalle := root.CreateElement("DetalleServicio")
	for i, line := range p.Lines {
		b.writeLinea(detalle, i+1, line, p.Products, p.Document.Currency)
	}

	b.writeResumen(root, p.Document, p.Lines)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (b *XMLBuilder) writeEmisor(parent *etree.Element, company *entity.Company) {
	emisor := parent.CreateElement("Emisor")
	emisor.CreateElement("Nombre").SetText(company.Name)

	ident := emisor.CreateElement("Identificacion")
	ident.CreateElement("Tipo").SetText(company.IdentificationType)
	ident.CreateElement("Numero").SetText(company.IdentificationNumber)

	if company.Province != "" {
		ubicacion := emisor.CreateElement("Ubicacion")
		ubicacion.CreateElement("Provincia").SetText(company.Province)
		ubicacion.CreateElement("Canton").SetText(company.Canton)
		ubicacion.CreateElement("Distrito").SetText(company.District)
		if company.Address != "" {
			ubicacion.CreateElement("OtrasSenas").SetText(company.Address)
		}
	}
	emisor.CreateElement("CorreoElectronico").SetText(company.Email)
}

func (b *XMLBuilder) writeReceptor(parent *etree.Element, client *entity.Client) {
	receptor := parent.CreateElement("Receptor")
	receptor.CreateElement("Nombre").SetText(client.Name)

	ident := receptor.CreateElement("Identificacion")
	ident.CreateElement("Tipo").SetText(client.IdentificationType)
	ident.CreateElement("Numero").SetText(client.IdentificationNumber)

	if client.Email != "" {
		receptor.CreateElement("CorreoElectronico").SetText(client.Email)
	}
}

func (b *XMLBuilder) writeCondicionVenta(parent *etree.Element, document *entity.Document) {
	condicion := pkghacienda.CondicionContado
	if document.Terms == entity.TermsCredito {
		condicion = pkghacienda.CondicionCredito
	}
	parent.CreateElement("CondicionVenta").SetText(condicion)

	if document.Terms == entity.TermsCredito && document.DueDate != nil {
		// Plazo en días entre emisión y vencimiento; Hacienda lo exige para crédito.
		days := int(document.DueDate.Sub(document.IssueDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
		parent.CreateElement("PlazoCredito").SetText(fmt.Sprintf("%d", days))
	}
	parent.CreateElement("MedioPago").SetText(pkghacienda.MedioEfectivo)
}

func (b *XMLBuilder) writeLinea(
	detalle *etree.Element,
	numero int,
	line *entity.LineItem,
	products map[string]*entity.Product,
	currency string,
) {
	linea := detalle.CreateElement("LineaDetalle")
	linea.CreateElement("NumeroLinea").SetText(fmt.Sprintf("%d", numero))

	if line.HasProduct() {
		if product, ok := products[*line.ProductID]; ok && product != nil {
			linea.CreateElement("Codigo").SetText(product.CabysCode)
			codigo := linea.CreateElement("CodigoComercial")
			codigo.CreateElement("Tipo").SetText("01") // código del vendedor
			codigo.CreateElement("Codigo").SetText(product.SKU)
		}
	}

	linea.CreateElement("Cantidad").SetText(line.Quantity.String())
	linea.CreateElement("UnidadMedida").SetText("Unid")
	linea.CreateElement("Detalle").SetText(line.Description)
	linea.CreateElement("PrecioUnitario").SetText(amount(line.UnitPrice))
	linea.CreateElement("MontoTotal").SetText(amount(line.BaseAmount))
	linea.CreateElement("SubTotal").SetText(amount(line.BaseAmount))

	if line.TaxAmount.IsPositive() {
		impuesto := linea.CreateElement("Impuesto")
		impuesto.CreateElement("Codigo").SetText("01") // IVA
		impuesto.CreateElement("CodigoTarifa").SetText(codigoTarifa(line.TaxRate))
		impuesto.CreateElement("Tarifa").SetText(amount(line.TaxRate))
		impuesto.CreateElement("Monto").SetText(amount(line.TaxAmount))
	}
	linea.CreateElement("MontoTotalLinea").SetText(amount(line.LineTotal))
}

func (b *XMLBuilder) writeResumen(parent *etree.Element, document *entity.Document, lines []*entity.LineItem) {
	resumen := parent.CreateElement("ResumenFactura")

	moneda := resumen.CreateElement("CodigoTipoMoneda")
	moneda.CreateElement("CodigoMoneda").SetText(document.Currency)
	moneda.CreateElement("TipoCambio").SetText("1.00")

	var gravado, exento decimal.Decimal
	for _, line := range lines {
		if line.TaxAmount.IsPositive() {
			gravado = gravado.Add(line.BaseAmount)
		} else {
			exento = exento.Add(line.BaseAmount)
		}
	}
	resumen.CreateElement("TotalGravado").SetText(amount(gravado))
	resumen.CreateElement("TotalExento").SetText(amount(exento))
	resumen.CreateElement("TotalVenta").SetText(amount(document.Subtotal))
	resumen.CreateElement("TotalVentaNeta").SetText(amount(document.Subtotal))
	resumen.CreateElement("TotalImpuesto").SetText(amount(document.TaxTotal))
	resumen.CreateElement("TotalComprobante").SetText(amount(document.GrandTotal))
}

// codigoTarifa mapea el porcentaje de IVA al código de tarifa del anexo v4.3.
func codigoTarifa(rate decimal.Decimal) string {
	switch rate.IntPart() {
	case 0:
		return "01"
	case 1:
		return "02"
	case 2:
		return "03"
	case 4:
		return "04"
	case 8:
		return "07"
	default:
		return "08" // tarifa general 13%
	}
}

// amount formatea montos con dos decimales, como exige el esquema.
func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
