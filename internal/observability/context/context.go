// Package context carries request correlation values through a request.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// EntityFromRoute names the ledger collection a route works on, such as
// "farmers" for /api/farmers/:id/dues. Routes outside /api report "system".
func EntityFromRoute(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "system"
	}
	entity, _, _ := strings.Cut(rest, "/")
	if entity == "" {
		return "system"
	}
	return entity
}
