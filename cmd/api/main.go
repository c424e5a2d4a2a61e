package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docscan/docs"
	"docscan/internal/config"
	"docscan/internal/database"
	"docscan/internal/database/migration"
	handlers "docscan/internal/http/handler"
	"docscan/internal/http/middleware"
	"docscan/internal/logging"
	"docscan/internal/otel"
	"docscan/internal/picker"
	"docscan/internal/repository"
	"docscan/internal/repository/gormrepo"
	"docscan/internal/repository/postgres"
	"docscan/internal/repository/sqlite"
	"docscan/internal/scanner"
	"docscan/internal/service"
	"docscan/internal/storage"
	"docscan/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title Document Scanner API
// @version 1.0
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docscan: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc := cfg.Location()

	logger, err := logging.New(cfg.Debug, loc)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, repo, err := openRepository(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	objects, err := newResolver(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Scanner.InboxDir, 0o755); err != nil {
		return fmt.Errorf("create scanner inbox: %w", err)
	}
	scan := scanner.NewInboxScanner(cfg.Scanner.InboxDir,
		scanner.WithTimeout(cfg.Scanner.ScanTimeout()),
		scanner.WithSettle(cfg.Scanner.Settle()),
		scanner.WithLogger(logger),
	)

	pick, err := picker.NewDirectoryPicker(cfg.Picker.Destination, picker.WithExistenceChecker(objects))
	if err != nil {
		return err
	}

	reg := prometheus.DefaultRegisterer
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register service metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	coord := service.NewDocumentCoordinator(store.New(repo, logger), objects, scan, pick,
		service.WithLogger(logger),
		service.WithMetrics(metrics),
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
	)
	if err := coord.Start(ctx); err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: !cfg.Debug,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(ctx, app, db, coord)

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

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("http server listening", zap.String("addr", addr), zap.Strings("schemes", objects.Schemes()))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// openRepository connects to the configured database, brings the schema up to date
// and returns the repository for the configured backend. The *sql.DB serves health checks.
func openRepository(ctx context.Context, c config.DatabaseConfig, logger *zap.Logger) (*sql.DB, repository.DocumentRepository, error) {
	if c.Backend == config.BackendGorm {
		gdb, err := database.NewGorm(c)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		repo := gormrepo.NewDocumentGorm(gdb)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database ready", zap.String("backend", c.Backend), zap.String("driver", c.Driver))
		return db, repo, nil
	}

	db, dialect, err := database.Open(c)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	host := c.Host
	if dialect == database.DialectSQLite {
		host = c.Path
	}
	if err := migration.EnsureMigrated(ctx, db, dialect, logger, host); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	var repo repository.DocumentRepository
	if dialect == database.DialectPostgres {
		repo = postgres.NewDocumentPostgres(db)
	} else {
		repo = sqlite.NewDocumentSQLite(db)
	}
	logger.Info("database ready", zap.String("backend", config.BackendSQL), zap.String("driver", c.Driver))
	return db, repo, nil
}

// newResolver serves file:// and content:// locations from local roots and,
// when object storage is configured, s3:// locations from MinIO.
func newResolver(cfg *config.AppConfig) (*storage.Resolver, error) {
	r := storage.NewResolver()
	r.Register("file", storage.NewFileStorage(cfg.Storage.FileRoot))
	r.Register("content", storage.NewContentStorage(cfg.Storage.ContentRoot))

	if cfg.MinIO.Endpoint != "" {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		r.Register("s3", objStore)
	}
	return r, nil
}
