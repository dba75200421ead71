package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/stackdiff/internal/budget"
	"github.com/rpggio/stackdiff/internal/config"
	"github.com/rpggio/stackdiff/internal/diff"
	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/changes"
	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/rpggio/stackdiff/internal/mcp"
	"github.com/rpggio/stackdiff/internal/sqlite"
)

var buildVersion = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries JSON-RPC in stdio mode.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      newServices(db, cfg, logger),
		Resolver:      sqlite.NewAPIKeyRepository(db),
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultTenant: cfg.Auth.DefaultTenant,
		Version:       buildVersion,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdio(ctx, logger, mcpServer)
	}
	return runHTTP(ctx, logger, mcpServer, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
}

func newServices(db *sqlite.DB, cfg config.Config, logger *slog.Logger) mcp.Services {
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	versionSvc := version.NewService(sqlite.NewVersionRepository(db), logger)

	differ := diff.NewDiffer(diff.Options{
		Timeout:           cfg.Diff.Timeout,
		LineModeThreshold: cfg.Diff.LineModeThreshold,
	})
	allocator := budget.NewAllocator(differ, logger, budget.Options{MaxContentBytes: cfg.Diff.MaxContentBytes})

	return mcp.Services{
		Changes: changes.NewService(activitySvc, versionSvc, allocator, changes.Options{
			OutputCeiling: cfg.Budget.OutputCeiling,
			MinUseful:     cfg.Budget.MinUseful,
			ActivityLimit: cfg.Budget.ActivityLimit,
		}, logger),
		Differ: differ,
	}
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run returns when stdin closes or ctx is canceled.
	err := server.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func newRouter(server *sdkmcp.Server) *http.ServeMux {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	return router
}

func runHTTP(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           newRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
