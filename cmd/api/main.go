package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/stock"
	infrahacienda "github.com/tu-usuario/facturacion-pro/internal/infrastructure/hacienda"
	"github.com/tu-usuario/facturacion-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/facturacion-pro/internal/interfaces/http"
	"github.com/tu-usuario/facturacion-pro/pkg/config"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	providerRepo := postgres.NewProviderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	overrideRepo := postgres.NewPriceOverrideRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recorder := audit.NewRecorder(auditRepo, log)
	reconciler := stock.NewReconciler(log)
	pricing := billing.NewPricingResolver(overrideRepo)
	fiscal := billing.FiscalParams{Situacion: cfg.Hacienda.Situacion}

	createDocumentUC := billing.NewCreateDocumentUseCase(
		txRunner, reconciler,
		clientRepo, providerRepo, companyRepo, productRepo, docRepo,
		pricing, recorder, fiscal, log,
	)
	paymentUC := billing.NewPaymentUseCase(txRunner, recorder, log)
	annulUC := billing.NewAnnulDocumentUseCase(txRunner, reconciler, recorder, log)
	updateLinesUC := billing.NewUpdateLinesUseCase(txRunner, reconciler, productRepo, pricing, recorder, log)
	queryUC := billing.NewDocumentQueryUseCase(docRepo)
	overrideUC := billing.NewPriceOverrideUseCase(overrideRepo, recorder)

	// Envío a Hacienda: armado del XML, entrega REST y catálogo CABYS.
	// En ambiente "dev" el gateway simula la aceptación sin red.
	xmlBuilder := infrahacienda.NewXMLBuilder()
	gateway := infrahacienda.NewRestClient(cfg.Hacienda, log)
	catalog := infrahacienda.NewCabysCatalog(cfg.Hacienda)
	submitUC := billing.NewSubmitDocumentUseCase(
		docRepo, companyRepo, clientRepo, productRepo,
		xmlBuilder, gateway, catalog, recorder, log,
	)

	// Job nocturno: materializa y revierte VENCIDA según due_date.
	overdueUC := billing.NewOverdueReclassifierUseCase(docRepo, log)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Jobs.OverdueCron, overdueUC.Run); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Jobs.OverdueCron).Msg("programando job de vencidas")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateDocument: createDocumentUC,
		Payments:       paymentUC,
		Annul:          annulUC,
		UpdateLines:    updateLinesUC,
		Submit:         submitUC,
		Queries:        queryUC,
		PriceOverrides: overrideUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
