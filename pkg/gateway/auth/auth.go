// Package auth carries the resolved caller identity through request
// contexts. Ownership checks in the engine use the principal's owner id.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the resolved caller.
type Principal struct {
	// Owner is the opaque owner id sessions are scoped to.
	Owner string
	// APIKey is the raw presented token. It must not be logged.
	APIKey string
}

type ctxKeyPrincipal struct{}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal{}, p)
}

// PrincipalFrom returns the principal attached to the context, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal{}).(*Principal)
	return p, ok && p != nil
}

// OwnerFrom returns the owner id attached to the context, or empty.
func OwnerFrom(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok {
		return p.Owner
	}
	return ""
}

// ParseBearer extracts a bearer token from the Authorization header.
func ParseBearer(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(raw[len(prefix):])
	return token, token != ""
}
