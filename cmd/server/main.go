package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/rvforms/internal/config"
	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/JonMunkholm/rvforms/internal/core/templates"
	"github.com/JonMunkholm/rvforms/internal/history"
	"github.com/JonMunkholm/rvforms/internal/logging"
	"github.com/JonMunkholm/rvforms/internal/web"
	"github.com/JonMunkholm/rvforms/internal/workbook"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	runLog, runLogFile, err := logging.OpenRunLog(cfg.Generator.LogFile)
	if err != nil {
		slog.Error("failed to open run log", "error", err)
		os.Exit(1)
	}
	defer runLogFile.Close()

	var recorder core.RunRecorder
	if cfg.Database.Enabled() {
		pool, err := history.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := history.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		recorder = history.New(pool)
		slog.Info("run history stored in database")
	} else {
		recorder = core.NewMemoryHistory(0)
		slog.Info("no DATABASE_URL set, keeping run history in memory")
	}

	var outputs core.OutputStore
	if cfg.Generator.OutputDir != "" {
		outputs = workbook.DirStore{Dir: cfg.Generator.OutputDir}
	}

	registry := templates.Default()
	generator := core.NewGenerator(registry, core.GeneratorConfig{
		HeaderScanRows: cfg.Generator.HeaderScanRows,
		FontSize:       cfg.Generator.FontSize,
		DateFormat:     cfg.Generator.DateFormat,
	})

	service, err := core.NewService(core.ServiceConfig{
		Generator:  generator,
		Open:       workbook.OpenDocument,
		Limiter:    core.NewRunLimiter(cfg.Runs.MaxConcurrent, cfg.Runs.MaxWaitTime),
		Recorder:   recorder,
		Outputs:    outputs,
		RunLog:     runLog,
		Retention:  cfg.Runs.Retention,
		RunTimeout: cfg.Runs.Timeout,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	slog.Info("templates registered", "count", registry.Len())

	server := web.NewServer(service, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			closeQuietly(runLogFile)
			os.Exit(1)
		}
		return
	case <-sigCh:
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for runs to complete", "active", status.Active)
	}
	if err := service.Shutdown(shutdownCtx); err != nil {
		slog.Warn("runs did not complete in time", "error", err)
	} else {
		slog.Info("all runs completed")
	}
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close", "error", err)
	}
}
