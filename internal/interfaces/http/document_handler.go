package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// DocumentHandler maneja el ciclo de vida HTTP de una familia de documentos.
// Se instancia dos veces: /api/invoices (RECEIVABLE) y /api/bills (PAYABLE);
// la familia la fija el montaje de rutas, nunca el body.
type DocumentHandler struct {
	family      string
	create      *billing.CreateDocumentUseCase
	payments    *billing.PaymentUseCase
	annul       *billing.AnnulDocumentUseCase
	updateLines *billing.UpdateLinesUseCase
	submit      *billing.SubmitDocumentUseCase // nil para la familia por pagar
	queries     *billing.DocumentQueryUseCase
}

// NewDocumentHandler construye el handler para una familia.
func NewDocumentHandler(
	family string,
	create *billing.CreateDocumentUseCase,
	payments *billing.PaymentUseCase,
	annul *billing.AnnulDocumentUseCase,
	updateLines *billing.UpdateLinesUseCase,
	submit *billing.SubmitDocumentUseCase,
	queries *billing.DocumentQueryUseCase,
) *DocumentHandler {
	return &DocumentHandler{
		family:      family,
		create:      create,
		payments:    payments,
		annul:       annul,
		updateLines: updateLines,
		submit:      submit,
		queries:     queries,
	}
}

// Create crea un documento con sus líneas y efectos de inventario.
// POST /api/invoices | POST /api/bills
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.create.CreateDocument(c.Context(), companyID, userID, h.family, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// List lista los documentos de la familia con filtros de estado y paginación.
// GET /api/invoices | GET /api/bills
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	docs, err := h.queries.ListDocuments(c.Context(), companyID, repository.DocumentFilter{
		Family: h.family,
		State:  c.Query("state"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

// GetByID obtiene el detalle completo, con estado efectivo de vencimiento.
// GET /api/invoices/:id | GET /api/bills/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, err := h.queries.GetDocument(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// ApplyPayment aplica un abono al saldo del documento.
// POST /api/invoices/:id/payments | POST /api/bills/:id/payments
func (h *DocumentHandler) ApplyPayment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.payments.ApplyPayment(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ApplyDebitAdjustment sube el saldo del documento (intereses, mora).
// POST /api/invoices/:id/debit-adjustments | POST /api/bills/:id/debit-adjustments
func (h *DocumentHandler) ApplyDebitAdjustment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DebitAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.payments.ApplyDebitAdjustment(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Annul anula el documento y revierte inventario. Idempotente.
// POST /api/invoices/:id/annul | POST /api/bills/:id/annul
func (h *DocumentHandler) Annul(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	result, err := h.annul.Annul(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// UpdateLines reemplaza las líneas de un documento aún PENDIENTE.
// PUT /api/invoices/:id/lines | PUT /api/bills/:id/lines
func (h *DocumentHandler) UpdateLines(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.updateLines.UpdateLines(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// Submit envía el comprobante electrónico a Hacienda.
// POST /api/invoices/:id/submit (solo facturas por cobrar)
func (h *DocumentHandler) Submit(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if h.family != entity.FamilyReceivable || h.submit == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ruta no disponible para esta familia"})
	}
	status, err := h.submit.Submit(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// SubmissionStatus consulta el estado de envío sin disparar red.
// GET /api/invoices/:id/submission (solo facturas por cobrar)
func (h *DocumentHandler) SubmissionStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	status, err := h.queries.GetSubmissionStatus(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
