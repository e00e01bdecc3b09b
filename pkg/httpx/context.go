package httpx

import (
	"context"

	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyUsername ctxKey = "username"
	CtxKeyRole     ctxKey = "role"
	CtxKeyClaims   ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Username)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// WithClaims returns ctx carrying c as if AuthnMiddleware had accepted it.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return contextWithAuth(ctx, c)
}

// Username returns the authenticated username, or "" when unauthenticated.
func Username(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUsername).(string)
	return v
}

// Role returns the authenticated role name.
func Role(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRole).(string)
	return v
}

// ClaimsFrom returns the verified session claims.
func ClaimsFrom(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}
