package auth

import "context"

// ClaimsKey is the gin context key the JWT middleware stores claims under.
const ClaimsKey = "claims"

type claimsCtxKey struct{}

// GetClaims accepts a *gin.Context, whose Value resolves string keys from its
// own store, or any context built with WithClaims.
func GetClaims(ctx context.Context) (*Claims, bool) {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok && claims != nil {
		return claims, true
	}
	claims, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return claims, ok && claims != nil
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// GetUserID returns the caller's user id, or "" for an anonymous call.
func GetUserID(ctx context.Context) string {
	if claims, ok := GetClaims(ctx); ok {
		return claims.UserID
	}
	return ""
}
