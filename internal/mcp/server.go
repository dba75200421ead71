package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stackdiff/internal/diff"
	"github.com/rpggio/stackdiff/internal/domain/changes"
)

// ChangesService defines the activity summary operation needed by MCP.
type ChangesService interface {
	Summarize(ctx context.Context, tenantID string, req changes.SummaryRequest) (*changes.Summary, error)
}

// Differ defines the content diff operations needed by MCP.
type Differ interface {
	Compare(oldContent, newContent, oldLabel, newLabel string) (*diff.Result, string)
	ApplyPatch(base, patch string) diff.PatchResult
}

// Services contains all domain services needed by MCP.
type Services struct {
	Changes ChangesService
	Differ  Differ
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TenantResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultTenant string
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.DefaultTenant == "" {
		cfg.DefaultTenant = "default"
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	if cfg.Services.Differ == nil {
		cfg.Services.Differ = diff.NewDiffer(diff.Options{})
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "stackdiff",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only, so auth is always off there.
	tenancy := fixedTenantMiddleware(cfg.DefaultTenant)
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		tenancy = authMiddleware(cfg.Resolver)
	}
	// The first middleware listed runs first.
	server.AddReceivingMiddleware(observeMiddleware(cfg.Logger), sessionMiddleware(), tenancy)
	server.AddSendingMiddleware(outboundLoggingMiddleware(cfg.Logger))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
