package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type contextKey int

const (
	tenantIDKey contextKey = iota
	sessionIDKey
)

func getTenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// TenantResolver resolves a tenant ID from a bearer token.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// unauthenticatedMethod reports whether method may run before a tenant is
// known. Handshake and notifications carry no credentials of their own.
func unauthenticatedMethod(method string) bool {
	return method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/")
}

func bearerToken(h http.Header) string {
	return strings.TrimSpace(strings.TrimPrefix(h.Get("Authorization"), "Bearer "))
}

// authMiddleware resolves the tenant from the request's bearer token.
func authMiddleware(resolver TenantResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if unauthenticatedMethod(method) {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", ErrUnauthorized)
			}
			token := bearerToken(extra.Header)
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
			}

			tenantID, err := resolver.ResolveTenant(ctx, token)
			if err != nil || tenantID == "" {
				authFailures.Inc()
				return nil, fmt.Errorf("%w: invalid bearer token", ErrUnauthorized)
			}

			return next(context.WithValue(ctx, tenantIDKey, tenantID), method, req)
		}
	}
}

// fixedTenantMiddleware scopes every request to one tenant. Used for stdio
// and for HTTP with auth disabled.
func fixedTenantMiddleware(tenantID string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(context.WithValue(ctx, tenantIDKey, tenantID), method, req)
		}
	}
}

// sessionMiddleware records the client session in the context so tool
// logs can be correlated. HTTP clients send Mcp-Session-Id; otherwise the
// transport's own session ID is used.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string
			if extra := req.GetExtra(); extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get("Mcp-Session-Id")
			}
			if sessionID == "" {
				sessionID = sessionOf(req)
			}
			if sessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			}
			return next(ctx, method, req)
		}
	}
}
