package api

import (
	"context"

	"github.com/terra-clan/graduate-survey/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "admin_claims"

// ClaimsFromContext extracts admin claims from context
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// ContextWithClaims adds admin claims to context
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
