package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"peopleapi/docs"
	"peopleapi/internal/config"
	"peopleapi/internal/database"
	"peopleapi/internal/database/migration"
	handlers "peopleapi/internal/http/handler"
	"peopleapi/internal/http/middleware"
	"peopleapi/internal/logger"
	tracing "peopleapi/internal/otel"
	"peopleapi/internal/repository/postgres"
	"peopleapi/internal/service"
	"peopleapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title People API
// @version 1.0
// @description CRUD API for customers and people backed by PostgreSQL.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.Defaults().Log, time.UTC)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Log, logger.Location(cfg.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	customers := service.NewCustomerService(postgres.NewCustomerRepository(db, log), log)
	people := service.NewPeopleService(postgres.NewPersonRepository(db, log), log)

	routes := handlers.Routes{
		DB:        db,
		Gatherer:  prometheus.DefaultGatherer,
		Customers: customers,
		People:    people,
		Log:       log,
	}

	// Exports are optional; without an endpoint the routes are not mounted.
	if cfg.MinIO.Enabled() {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		expiry := time.Duration(cfg.MinIO.ExportURLExpirySec) * time.Second
		routes.CustomerExport = service.NewExporter("customer", customers, store, expiry, log)
		routes.PeopleExport = service.NewExporter("people", people, store, expiry, log)
	} else {
		log.Info().Msg("object storage not configured, exports disabled")
	}

	prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer, handlers.MetricsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// Server spans; the service layer opens child spans per call.
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, routes)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("public_host", cfg.AppHost).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
}
