// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/starford/assistant/internal/api"
	"github.com/starford/assistant/internal/calculator"
	"github.com/starford/assistant/internal/mcpserver"
	"github.com/starford/assistant/internal/menu"
	"github.com/starford/assistant/internal/sse"
	"github.com/starford/assistant/internal/watch"
	"github.com/starford/assistant/internal/workspace"
)

// newLogger builds the handler selected by the configuration. JSON records
// go to w; text records are colored and always go to stderr.
func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
}

// setup applies opts, installs the logger and opens the workspace.
func setup(opts []Option, logOut io.Writer) (*application, *slog.Logger, *workspace.Workspace, error) {
	app := &application{in: os.Stdin, out: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg.App, logOut)
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("currency", cfg.Finance.Currency),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := workspace.Open(cfg.Data.Files(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open workspace: %w", err)
	}
	return app, logger, ws, nil
}

// Run starts the interactive menu with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, _, ws, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	return menu.New(ws, app.in, app.out, app.config.Finance.Currency).Run(ctx)
}

// Calc evaluates one expression and prints the result.
func Calc(_ context.Context, expr string, opts ...Option) error {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	v, err := calculator.Evaluate(expr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.out, strconv.FormatFloat(v, 'g', -1, 64))
	return err
}

// ServeMCP exposes the managers as MCP tools on stdin/stdout. Logs never go
// to stdout in this mode.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, logger, ws, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting on stdio")
	return mcpserver.New(ws, app.config.Finance.Currency).ServeStdio()
}

// Serve starts the HTTP API, the SSE broker and the store watcher.
func Serve(ctx context.Context, opts ...Option) error {
	app, logger, ws, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", ws.Root()),
		slog.String("auth_mode", cfg.Auth.Mode))

	// SSE broker.
	broker := sse.NewBroker(cfg.App.Events.BalanceThrottle, sse.WithKeepAlive(cfg.App.Events.KeepAlive))
	defer broker.Close()

	// Build API handler and router.
	metrics := api.NewMetrics()
	h := api.NewHandler(ws, broker, metrics, cfg.Finance.Currency)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check and metrics endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Request contexts end with ctx, so open event streams close on shutdown.
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Reload managers whose store was edited outside the process.
	g.Go(func() error {
		err := watch.Watch(gCtx, ws, logger, func(domain string) {
			broker.PublishRecordEvent(sse.KindReloaded, domain, "")
		})
		if err != nil {
			logger.Warn("store watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
