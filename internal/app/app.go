package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"palaypulse/internal/config"
	"palaypulse/internal/dataset"
	apierrors "palaypulse/internal/errors"
	"palaypulse/internal/infrastructure"
	custommw "palaypulse/internal/middleware"
	"palaypulse/internal/services"
	transporthttp "palaypulse/internal/transport/http"
)

// Application wires configuration, the dataset store, services and the
// HTTP server together.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics

	Store         *dataset.Store
	PriceService  *services.PriceService
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler

	Router chi.Router
	Server *http.Server
}

// NewApplication builds a fully wired application from the environment
// and optional config file.
func NewApplication(version, buildTime string) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(""),
	}

	if err := app.initializeServices(version, buildTime); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and constructs the service
// layer. When the configured CSV file is unavailable and the fallback
// is enabled, the embedded dataset is loaded instead so the server
// still starts with data.
func (a *Application) initializeServices(version, buildTime string) error {
	ctx := context.Background()

	a.Store = dataset.NewStore(a.Logger)

	result, err := a.Store.Load(ctx, dataset.CSVSource{Path: a.Config.Data.CSVPath})
	if err != nil {
		if !errors.Is(err, dataset.ErrSourceUnavailable) || !a.Config.Data.UseFallback {
			return fmt.Errorf("failed to load dataset: %w", err)
		}

		a.Logger.Warn("CSV source unavailable, loading embedded fallback dataset",
			slog.String("csv_path", a.Config.Data.CSVPath),
			slog.String("error", err.Error()))

		result, err = a.Store.Load(ctx, dataset.FallbackSource{})
		if err != nil {
			return fmt.Errorf("failed to load fallback dataset: %w", err)
		}
	}

	a.Metrics.RowsAccepted.Add(float64(result.Accepted))
	a.Metrics.RowsRejected.Add(float64(result.Rejected))
	a.Metrics.LoadedRecords.Set(float64(a.Store.Count()))
	a.Metrics.LastLoadTimestamp.Set(float64(time.Now().Unix()))

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger)
	a.PriceService = services.NewPriceService(a.Store, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(version, buildTime, a.Store, a.Logger)

	return nil
}

// setupRouter configures the middleware chain and mounts the API
// routes. The /metrics endpoint sits outside the middleware group so
// scrapes bypass rate limiting and request logging.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			limiter := custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r)
	})

	r.Handle("/metrics", infrastructure.MetricsHandler())

	a.Router = r
}

// setupAPIRoutes mounts the handler routers under /api.
func (a *Application) setupAPIRoutes(r chi.Router) {
	priceHandler := transporthttp.NewPriceHandler(a.PriceService, a.Logger, a.ErrorHandler)
	healthHandler := transporthttp.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Mount("/prices", priceHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Post("/predict", priceHandler.Predict)
		r.Get("/version", healthHandler.Version)
	})
}

// createServer builds the HTTP server from the configured timeouts.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.Logger.InfoContext(ctx, "starting HTTP server",
			slog.String("addr", a.Server.Addr),
			slog.Int("records", a.Store.Count()))

		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return a.Stop(context.Background())
	}
}

// Stop gracefully shuts the server down within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(shutdownCtx, "shutting down HTTP server")

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.Warn("failed to close log file", slog.String("error", err.Error()))
	}

	return nil
}

// Run starts the application and blocks until an interrupt signal
// arrives, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		a.Logger.Info("received interrupt signal", slog.String("signal", sig.String()))
		cancel()
	}()

	return a.Start(ctx)
}
