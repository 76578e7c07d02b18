package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateDocument *billing.CreateDocumentUseCase
	Payments       *billing.PaymentUseCase
	Annul          *billing.AnnulDocumentUseCase
	UpdateLines    *billing.UpdateLinesUseCase
	Submit         *billing.SubmitDocumentUseCase
	Queries        *billing.DocumentQueryUseCase
	PriceOverrides *billing.PriceOverrideUseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Las dos familias comparten handlers;
// solo las facturas por cobrar exponen el envío a Hacienda.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Facturas por cobrar (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewDocumentHandler(
		entity.FamilyReceivable,
		deps.CreateDocument, deps.Payments, deps.Annul, deps.UpdateLines, deps.Submit, deps.Queries,
	)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id/lines", invoiceHandler.UpdateLines)
	invoices.Post("/:id/payments", invoiceHandler.ApplyPayment)
	invoices.Post("/:id/debit-adjustments", RequireRole("admin", "contador"), invoiceHandler.ApplyDebitAdjustment)
	invoices.Post("/:id/annul", RequireRole("admin", "contador"), invoiceHandler.Annul)
	invoices.Post("/:id/submit", invoiceHandler.Submit)
	invoices.Get("/:id/submission", invoiceHandler.SubmissionStatus)

	// Facturas de proveedor (protegido; sin envío a Hacienda)
	bills := protected.Group("/bills")
	billHandler := NewDocumentHandler(
		entity.FamilyPayable,
		deps.CreateDocument, deps.Payments, deps.Annul, deps.UpdateLines, nil, deps.Queries,
	)
	bills.Post("/", billHandler.Create)
	bills.Get("/", billHandler.List)
	bills.Get("/:id", billHandler.GetByID)
	bills.Put("/:id/lines", billHandler.UpdateLines)
	bills.Post("/:id/payments", billHandler.ApplyPayment)
	bills.Post("/:id/debit-adjustments", RequireRole("admin", "contador"), billHandler.ApplyDebitAdjustment)
	bills.Post("/:id/annul", RequireRole("admin", "contador"), billHandler.Annul)

	// Precios especiales por cliente (protegido)
	overrides := protected.Group("/price-overrides")
	overrideHandler := NewPriceOverrideHandler(deps.PriceOverrides)
	overrides.Post("/", overrideHandler.Create)
	overrides.Get("/", overrideHandler.List)
	overrides.Put("/:id", overrideHandler.Update)
	overrides.Delete("/:id", overrideHandler.Delete)
}
