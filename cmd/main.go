package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/adapters/http/api"
	app "github.com/acmx/sheetboard/internal/app"
	"github.com/acmx/sheetboard/internal/config"
	"github.com/acmx/sheetboard/pkg/logger"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Load a local .env before anything reads the environment. A
	// missing file is fine.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Open the workbook backend.
	workbook, cleanup, err := openWorkbook(cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open workbook", logger.Error(err))
		return
	}
	defer cleanup()
	loggerInstance.Info(ctx, "workbook opened",
		logger.String("driver", cfg.GridDriver),
		logger.Int("answerSheets", cfg.AnswerSheets),
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loggerInstance.Warn(ctx, "invalid timezone; falling back to UTC", logger.String("timezone", cfg.Timezone), logger.Error(err))
		loc = time.UTC
	}

	// Create and start the service with configuration options
	svc := app.New(workbook,
		app.WithLogger(loggerInstance),
		app.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		app.WithTokenSalt(cfg.TokenSalt),
		app.WithTokenMaxRetries(cfg.TokenMaxRetries),
		app.WithMaxMembers(cfg.MaxTeamMembers),
		app.WithNameBounds(cfg.MinNameLen, cfg.MaxNameLen),
		app.WithPointValues(cfg.PointValues),
		app.WithBucketPrefix(cfg.EventBucketPrefix),
		app.WithFlagCategories(cfg.FlagCategories),
		app.WithLocation(loc),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// openWorkbook builds the configured grid backend. The returned
// cleanup is always safe to call.
func openWorkbook(cfg *config.Config) (*grid.Workbook, func(), error) {
	switch cfg.GridDriver {
	case "sqlite":
		wb, err := grid.OpenSQLiteWorkbook(cfg.GridPath, cfg.AnswerSheets)
		if err != nil {
			return nil, func() {}, err
		}
		return &wb.Workbook, func() { _ = wb.Close() }, nil
	default:
		return grid.NewMemWorkbook(cfg.AnswerSheets), func() {}, nil
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
