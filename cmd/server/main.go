package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/adapter/cache"
	"github.com/seu-repo/ocpp-csms/internal/adapter/external/notification"
	"github.com/seu-repo/ocpp-csms/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/ocpp-csms/internal/adapter/http/fiber/middleware"
	v16 "github.com/seu-repo/ocpp-csms/internal/adapter/ocpp/v16"
	"github.com/seu-repo/ocpp-csms/internal/adapter/queue"
	"github.com/seu-repo/ocpp-csms/internal/adapter/storage/postgres"
	"github.com/seu-repo/ocpp-csms/internal/ports"
	"github.com/seu-repo/ocpp-csms/internal/service/authorization"
	"github.com/seu-repo/ocpp-csms/internal/service/holiday"
	"github.com/seu-repo/ocpp-csms/internal/service/report"
	"github.com/seu-repo/ocpp-csms/internal/service/settlement"
	"github.com/seu-repo/ocpp-csms/internal/service/tariff"
	"github.com/seu-repo/ocpp-csms/internal/service/transaction"
	"github.com/seu-repo/ocpp-csms/pkg/config"
)

const (
	serviceName    = "ocpp-csms"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting OCPP CSMS",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	if cfg.Database.Seed {
		if err := postgres.Seed(db, logger); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// 4. Initialize Cache (Redis, in-memory fallback)
	var appCache ports.Cache
	appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 5. Initialize Message Queue (NATS)
	messageQueue, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer messageQueue.Close()

	// 6. Initialize Repositories
	idTagRepo := postgres.NewIdTagRepository(db, logger)
	userRepo := postgres.NewUserRepository(db, logger)
	transactionRepo := postgres.NewTransactionRepository(db, logger)
	tariffRepo := postgres.NewTariffRepository(db, logger)
	reservationRepo := postgres.NewReservationRepository(db, logger)
	cardRepo := postgres.NewCardRepository(db, logger)
	statusLogRepo := postgres.NewStatusLogRepository(db, logger)
	reportRepo := postgres.NewReportRepository(db, logger)

	// 7. Initialize External Collaborators
	notifier := notification.NewPushAdapter(cfg.Notification.Push.Endpoint, cfg.Notification.Push.AccessToken, logger)

	// 8. Initialize Services (Business Logic Layer)
	authService := authorization.NewService(idTagRepo, reservationRepo, cardRepo, logger)
	tariffService := tariff.NewService(tariffRepo, logger)
	billingService := transaction.NewBillingService(transactionRepo, tariffService, logger)
	settlementService := settlement.NewService(cardRepo, userRepo, messageQueue, notifier, logger)
	transactionService := transaction.NewService(transactionRepo, authService, billingService, settlementService, logger)
	reportService := report.NewService(reportRepo, logger)
	holidayService := holiday.NewService(cfg.Holiday.Dir, logger)

	// 9. Initialize OCPP 1.6 Server
	statusStore := v16.NewStatusStore(appCache, logger)
	ocppHandlers := v16.NewHandlers(authService, transactionService, statusLogRepo, statusStore, logger)
	ocppServer := v16.NewServer(ocppHandlers, logger)
	go func() {
		if err := ocppServer.Start(cfg.OCPP.Port); err != nil {
			logger.Fatal("OCPP Server failed", zap.Error(err))
		}
	}()

	// 10. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// Administrative / reporting API
	api := app.Group("/api")

	adminHandler := handlers.NewAdminHandler(idTagRepo, userRepo, reservationRepo, logger)
	api.Get("/id_tags", adminHandler.ListIdTags)
	api.Post("/id_tags", adminHandler.CreateIdTag)
	api.Get("/id_tags/:id", adminHandler.GetIdTag)
	api.Put("/id_tags/:id", adminHandler.UpdateIdTag)
	api.Delete("/id_tags/:id", adminHandler.DeleteIdTag)

	api.Get("/users", adminHandler.ListUsers)
	api.Post("/users", adminHandler.CreateUser)
	api.Get("/users/:id", adminHandler.GetUser)
	api.Put("/users/:id", adminHandler.UpdateUser)
	api.Delete("/users/:id", adminHandler.DeleteUser)

	api.Get("/reservations", adminHandler.ListReservations)
	api.Post("/reservations", adminHandler.CreateReservation)
	api.Get("/reservations/:id", adminHandler.GetReservation)
	api.Put("/reservations/:id", adminHandler.UpdateReservation)
	api.Delete("/reservations/:id", adminHandler.DeleteReservation)

	cardHandler := handlers.NewCardHandler(cardRepo, logger)
	api.Get("/cards", cardHandler.List)
	api.Get("/cards/:id", cardHandler.Get)
	api.Post("/cards/:id/topup", cardHandler.TopUp)
	api.Get("/payments", cardHandler.ListPayments)

	pricingHandler := handlers.NewPricingHandler(tariffRepo, logger)
	api.Get("/pricing-rules", pricingHandler.ListRules)
	api.Post("/pricing-rules", pricingHandler.CreateRule)
	api.Put("/pricing-rules/:id", pricingHandler.UpdateRule)
	api.Delete("/pricing-rules/:id", pricingHandler.DeleteRule)
	api.Get("/base-rate", pricingHandler.GetBaseRate)

	txHandler := handlers.NewTransactionHandler(transactionService, billingService, logger)
	api.Get("/transactions/export", txHandler.ExportCSV)
	api.Get("/transactions/cost-summary", txHandler.CostSummary)
	api.Get("/transactions", txHandler.List)
	api.Get("/transactions/:id", txHandler.Get)
	api.Get("/transactions/:id/cost", txHandler.Cost)

	statusHandler := handlers.NewStatusHandler(statusStore, statusLogRepo, transactionRepo, logger)
	api.Get("/status", statusHandler.Snapshot)
	api.Get("/status/logs", statusHandler.History)
	api.Get("/charge-points/:id/latest-meter", statusHandler.LatestMeter)

	reportHandler := handlers.NewReportHandler(reportService, holidayService, userRepo, notifier, logger)
	api.Get("/summary", reportHandler.Summary)
	api.Get("/summary/top", reportHandler.TopConsumers)
	api.Get("/summary/pricing-matrix", pricingHandler.PricingMatrix)
	api.Get("/summary/daily-by-chargepoint-range", reportHandler.DailyByChargePoint)
	api.Get("/dashboard/summary", reportHandler.Dashboard)
	api.Get("/holiday/:date", reportHandler.Holiday)
	api.Post("/messaging/test", reportHandler.Notify)

	// 11. Start Background Workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	weekly := report.NewWeeklyNotifier(reportRepo, userRepo, notifier, logger)
	go weekly.Run(workerCtx)
	go startQueueWorkers(messageQueue, logger)

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	if err := ocppServer.Stop(ctx); err != nil {
		logger.Error("OCPP server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// startQueueWorkers subscribes the in-process consumers. Low-balance events
// are also consumed here so operators can fan them out to other systems.
func startQueueWorkers(mq queue.MessageQueue, logger *zap.Logger) {
	err := mq.Subscribe(settlement.SubjectLowBalance, func(msg []byte) error {
		logger.Info("Low-balance event", zap.ByteString("event", msg))
		return nil
	})
	if err != nil {
		logger.Error("Failed to subscribe to low-balance events", zap.Error(err))
	}
}
