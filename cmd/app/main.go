package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mauv0809/finance-dashboard/internal/config"
	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/handlers"
	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/logging"
	"github.com/mauv0809/finance-dashboard/internal/metrics"
	"github.com/mauv0809/finance-dashboard/internal/observability"
	"github.com/mauv0809/finance-dashboard/internal/session"
)

// version is set at build time.
var version = "dev"

func main() {
	// Load .env file if it exists (local dev)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warnw("Sentry disabled", "error", err)
	}
	defer flush()

	// Setup pipeline and session store
	loader := ingest.NewLoader(logger.Named("loader"))
	pipeline := dashboard.NewPipeline(loader, logger.Named("pipeline"), metrics.Recorder{})
	sessions := session.NewStore(cfg.SessionTTL)
	h := handlers.New(pipeline, sessions, cfg.Branding, cfg.MaxUploadBytes, logger.Named("http"))

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				logger.Infow("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			} else {
				logger.Warnw("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	// Multipart framing adds a little on top of the file itself.
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+64*1024, 10) + "B"))

	// Routes
	h.Register(e)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infow("Starting server", "addr", cfg.Addr(), "env", cfg.Env, "version", version)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
}
