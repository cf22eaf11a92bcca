package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	// Internal packages
	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/adapter/http/fiber/handlers"
	"github.com/forecourt/backoffice/internal/adapter/http/fiber/middleware"
	"github.com/forecourt/backoffice/internal/adapter/queue"
	"github.com/forecourt/backoffice/internal/adapter/storage/postgres"
	"github.com/forecourt/backoffice/internal/adapter/vault"
	"github.com/forecourt/backoffice/internal/adapter/webhook"
	wsAdapter "github.com/forecourt/backoffice/internal/adapter/websocket"
	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/observability/telemetry"
	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/internal/reconcile"
	"github.com/forecourt/backoffice/internal/service/alert"
	"github.com/forecourt/backoffice/internal/service/auth"
	"github.com/forecourt/backoffice/internal/service/customer"
	"github.com/forecourt/backoffice/internal/service/delivery"
	"github.com/forecourt/backoffice/internal/service/email"
	"github.com/forecourt/backoffice/internal/service/health"
	"github.com/forecourt/backoffice/internal/service/reading"
	"github.com/forecourt/backoffice/internal/service/report"
	"github.com/forecourt/backoffice/internal/service/station"
	"github.com/forecourt/backoffice/pkg/config"
)

const (
	serviceName    = "forecourt-backoffice"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format
	if configured, err := buildLogger(cfg.Logging); err != nil {
		logger.Warn("Invalid logging config, keeping defaults", zap.Error(err))
	} else {
		logger = configured
		defer logger.Sync()
	}

	logger.Info("Starting Forecourt Back Office",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Pull secrets from Vault when enabled. Vault values take
	// precedence over anything in the config file or environment.
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Fatal("Failed to connect to Vault", zap.Error(err))
		}
		if url, err := secrets.GetDatabaseURL(); err != nil {
			logger.Fatal("Failed to read database URL from Vault", zap.Error(err))
		} else {
			cfg.Database.URL = url
		}
		if secret, err := secrets.GetJWTSecret(); err != nil {
			logger.Fatal("Failed to read JWT secret from Vault", zap.Error(err))
		} else {
			cfg.JWT.Secret = secret
		}
		if apiKey, err := secrets.GetSendGridAPIKey(); err != nil {
			logger.Warn("SendGrid API key not found in Vault", zap.Error(err))
		} else {
			cfg.Email.APIKey = apiKey
		}
		logger.Info("Secrets loaded from Vault", zap.String("address", cfg.Vault.Address))
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize Cache. Redis is preferred; a local in-process cache
	// keeps a single-node deployment running when Redis is down.
	cacheStore, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", zap.Error(err))
		cacheStore = cache.NewLocalCache(5*time.Minute, logger)
	}
	defer cacheStore.Close()

	// 7. Initialize Message Queue
	var messageQueue queue.MessageQueue
	switch cfg.Queue.Type {
	case "rabbitmq":
		messageQueue, err = queue.NewRabbitMQQueue(cfg.Queue.RabbitMQ.URL, logger)
	default:
		messageQueue, err = queue.NewNATSQueue(cfg.Queue.NATS.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to message queue",
			zap.String("type", cfg.Queue.Type), zap.Error(err))
	}
	defer messageQueue.Close()

	// 8. Initialize WebSocket Hub (for real-time dashboard updates)
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	// 9. Initialize Repositories
	tankRepo := postgres.NewTankRepository(db, logger)
	islandRepo := postgres.NewIslandRepository(db, logger)
	pumpRepo := postgres.NewPumpRepository(db, logger)
	nozzleRepo := postgres.NewNozzleRepository(db, logger)
	readingRepo := postgres.NewReadingRepository(db, logger)
	deliveryRepo := postgres.NewDeliveryRepository(db, logger)
	customerRepo := postgres.NewCustomerRepository(db, logger)
	userRepo := postgres.NewUserRepository(db, logger)

	// 10. Initialize Services (Business Logic Layer)
	authService := auth.NewService(userRepo, cacheStore, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration, logger)
	stationService := station.NewService(tankRepo, islandRepo, pumpRepo, nozzleRepo, logger)
	readingService := reading.NewService(readingRepo, tankRepo, deliveryRepo, cacheStore, messageQueue,
		thresholdsFromConfig(cfg.Thresholds), cfg.Alerts.IncludeWarnings,
		cfg.Cache.PreviousShiftTTL, logger)
	deliveryService := delivery.NewService(deliveryRepo, tankRepo, messageQueue, logger)
	customerService := customer.NewService(customerRepo, cacheStore, cfg.Cache.CustomersTTL, logger)
	reportService := report.NewService(readingRepo, tankRepo, cfg.Station.Name, cfg.Station.Currency, logger)

	// 11. Initialize Email Service. Mail is optional: a misconfigured
	// provider downgrades alerting to webhook-only instead of blocking boot.
	var emailService ports.EmailService
	if svc, err := email.NewService(&email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.From,
		FromName:       cfg.Email.FromName,
		SendGridAPIKey: cfg.Email.APIKey,
		SMTPHost:       cfg.Email.SMTP.Host,
		SMTPPort:       cfg.Email.SMTP.Port,
		SMTPUsername:   cfg.Email.SMTP.Username,
		SMTPPassword:   cfg.Email.SMTP.Password,
		SMTPUseTLS:     cfg.Email.SMTP.UseTLS,
		BaseURL:        cfg.Email.BaseURL,
		StationName:    cfg.Station.Name,
	}, logger); err != nil {
		logger.Warn("Email service disabled", zap.Error(err))
	} else {
		emailService = svc
	}

	// 12. Initialize Alert Worker
	if cfg.Alerts.Enabled {
		var notifier ports.AlertNotifier
		if cfg.Alerts.WebhookURL != "" {
			notifier = webhook.NewClient(cfg.Alerts.WebhookURL, logger)
		}
		alertService := alert.NewService(messageQueue, emailService, notifier,
			readingRepo, cfg.Alerts.ManagerEmail, logger)
		if err := alertService.Start(); err != nil {
			logger.Fatal("Failed to start alert worker", zap.Error(err))
		}
	}

	// 13. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.HTTP.AllowedOrigins))
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting))
	}
	app.Use(middleware.CircuitBreaker(logger))

	// Health Check Endpoints
	healthService := health.NewService(&health.Config{
		Version: serviceVersion,
		DB:      db,
		Cache:   cacheStore,
		Queue:   messageQueue,
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		path := cfg.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("", middleware.AuthRequired(authService))
	protected.Get("/auth/me", authHandler.Me)

	// Infrastructure routes. Everyone can read the layout; only admins
	// reshape it.
	stationHandler := handlers.NewStationHandler(stationService, logger)
	protected.Get("/tanks", stationHandler.ListTanks)
	protected.Get("/tanks/:id", stationHandler.GetTank)
	protected.Get("/islands", stationHandler.ListIslands)
	protected.Get("/pumps", stationHandler.ListPumps)
	protected.Get("/nozzles", stationHandler.ListNozzles)

	admin := protected.Group("", middleware.RequireRoles(domain.UserRoleAdmin))
	admin.Post("/tanks", stationHandler.CreateTank)
	admin.Patch("/tanks/:id/status", stationHandler.UpdateTankStatus)
	admin.Post("/islands", stationHandler.CreateIsland)
	admin.Post("/pumps", stationHandler.CreatePump)
	admin.Patch("/pumps/:id/status", stationHandler.UpdatePumpStatus)
	admin.Post("/nozzles", stationHandler.CreateNozzle)
	admin.Patch("/nozzles/:id/status", stationHandler.UpdateNozzleStatus)

	// Shift reading routes. The previous-shift route must be registered
	// before the :id route or "previous" is matched as an ID.
	readingHandler := handlers.NewReadingHandler(readingService, logger)
	protected.Post("/readings", readingHandler.Submit)
	protected.Get("/readings", readingHandler.List)
	protected.Get("/readings/previous/:tankId", readingHandler.PreviousShift)
	protected.Get("/readings/:id", readingHandler.Get)

	// Delivery routes
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService, logger)
	protected.Post("/deliveries", deliveryHandler.Create)
	protected.Get("/deliveries/unlinked", deliveryHandler.ListUnlinked)
	protected.Get("/deliveries/:id", deliveryHandler.Get)

	// Customer routes. Creating accounts is a manager decision.
	customerHandler := handlers.NewCustomerHandler(customerService, logger)
	protected.Get("/customers", customerHandler.List)
	protected.Get("/customers/:id", customerHandler.Get)

	managers := protected.Group("", middleware.RequireRoles(domain.UserRoleAdmin, domain.UserRoleManager))
	managers.Post("/customers", customerHandler.Create)

	// Report routes
	reportHandler := handlers.NewReportHandler(reportService, logger)
	managers.Get("/reports/daily/:date", reportHandler.DailySummary)
	managers.Get("/reports/daily/:date/export", reportHandler.ExportDailySummary)
	managers.Get("/reports/attendants/:date", reportHandler.AttendantSales)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Real-time updates WebSocket
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		userID := c.Query("userId", "guest")
		wsHub.AddClient(c, userID)
	}))

	// 14. Start Background Workers
	go startBackgroundWorkers(messageQueue, wsHub, reportService, emailService, cfg, logger)

	// 15. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 16. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// buildLogger constructs the zap logger described by the logging config.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// thresholdsFromConfig converts the float config values into the decimal
// policy the calculator works with. Unset values fall back to the station
// defaults.
func thresholdsFromConfig(cfg config.ThresholdsConfig) reconcile.Thresholds {
	t := reconcile.DefaultThresholds()
	if cfg.WarnVariancePercent > 0 {
		t.WarnVariancePercent = decimal.NewFromFloat(cfg.WarnVariancePercent)
	}
	if cfg.FailVariancePercent > 0 {
		t.FailVariancePercent = decimal.NewFromFloat(cfg.FailVariancePercent)
	}
	if cfg.WarnLossPercent > 0 {
		t.WarnLossPercent = decimal.NewFromFloat(cfg.WarnLossPercent)
	}
	if cfg.FailLossPercent > 0 {
		t.FailLossPercent = decimal.NewFromFloat(cfg.FailLossPercent)
	}
	return t
}

// wsEvent is the envelope broadcast to dashboard clients.
type wsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// startBackgroundWorkers wires the queue consumers that feed the live
// dashboard and schedules the daily report job.
func startBackgroundWorkers(mq queue.MessageQueue, hub *wsAdapter.Hub,
	reportService ports.ReportService, emailService ports.EmailService,
	cfg *config.Config, logger *zap.Logger) {
	logger.Info("Starting background workers")

	// Worker 1: fan submitted readings out to connected dashboards
	mq.Subscribe(queue.SubjectReadingSubmitted, func(msg []byte) error {
		broadcast(hub, queue.SubjectReadingSubmitted, msg)
		return nil
	})

	// Worker 2: fan recorded deliveries out to connected dashboards
	mq.Subscribe(queue.SubjectDeliveryRecorded, func(msg []byte) error {
		broadcast(hub, queue.SubjectDeliveryRecorded, msg)
		return nil
	})

	// Worker 3: email yesterday's summary at the configured hour
	if cfg.Jobs.DailyReport.Enabled && emailService != nil && cfg.Alerts.ManagerEmail != "" {
		runDailyReportJob(reportService, emailService, cfg.Jobs.DailyReport.Hour,
			cfg.Station.Timezone, cfg.Alerts.ManagerEmail, logger)
	}
}

func broadcast(hub *wsAdapter.Hub, event string, payload []byte) {
	data, err := json.Marshal(wsEvent{Event: event, Payload: payload})
	if err != nil {
		return
	}
	hub.Broadcast(data)
}

// runDailyReportJob sleeps until the configured local hour, then mails the
// previous day's reconciliation summary to the manager. It never returns.
func runDailyReportJob(reportService ports.ReportService, emailService ports.EmailService,
	hour int, timezone, recipient string, logger *zap.Logger) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("Unknown station timezone, using UTC", zap.String("timezone", timezone))
		loc = time.UTC
	}

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		time.Sleep(time.Until(next))

		date := time.Now().In(loc).AddDate(0, 0, -1).Format("2006-01-02")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		summary, err := reportService.DailySummary(ctx, date)
		if err != nil {
			logger.Error("Daily report job failed", zap.String("date", date), zap.Error(err))
			cancel()
			continue
		}
		if err := emailService.SendDailyReport(ctx, recipient, summary); err != nil {
			logger.Error("Failed to email daily report", zap.String("date", date), zap.Error(err))
		} else {
			logger.Info("Daily report sent", zap.String("date", date), zap.String("to", recipient))
		}
		cancel()
	}
}
