package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// maxLoggedPayload bounds each payload written to the debug log. Diff
// results can be large.
const maxLoggedPayload = 2048

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackdiff_mcp_requests_total",
		Help: "MCP requests handled, by method and outcome.",
	}, []string{"method", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackdiff_mcp_request_duration_seconds",
		Help:    "Time spent handling MCP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	authFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackdiff_mcp_auth_failures_total",
		Help: "Requests rejected for an unknown bearer token.",
	})
)

// observeMiddleware counts and times inbound requests and, at debug level,
// logs their payloads.
func observeMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			debug := logger.Enabled(ctx, slog.LevelDebug)
			if debug {
				logger.Debug("mcp request",
					"method", method,
					"session_id", sessionOf(req),
					"params", formatPayload(paramsOf(req)))
			}

			result, err := next(ctx, method, req)

			requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(method, outcome(result, err)).Inc()

			if debug && !strings.HasPrefix(method, "notifications/") {
				attrs := []any{
					"method", method,
					"session_id", sessionOf(req),
					"duration", time.Since(start),
					"result", formatPayload(result),
				}
				if err != nil {
					attrs = append(attrs, "error", err)
				}
				logger.Debug("mcp response", attrs...)
			}
			return result, err
		}
	}
}

// outboundLoggingMiddleware logs requests the server sends to the client.
func outboundLoggingMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Debug("mcp outbound", "method", method, "session_id", sessionOf(req), "params", formatPayload(paramsOf(req)))
			}
			return next(ctx, method, req)
		}
	}
}

func outcome(result sdkmcp.Result, err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case err != nil:
		return "error"
	}
	if r, ok := result.(*sdkmcp.CallToolResult); ok && r.IsError {
		return "tool_error"
	}
	return "ok"
}

// sessionOf and paramsOf guard against requests whose session or params
// are typed nils, which panic on access.
func sessionOf(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

func paramsOf(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return fmt.Sprintf("%s... (%d bytes)", data[:maxLoggedPayload], len(data))
	}
	return string(data)
}
