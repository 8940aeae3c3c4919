package middleware

import (
	"context"

	"auth-service/pkg/jwtutil"
)

type contextKey string

const (
	ContextUserID contextKey = "user_id"
	ContextClaims contextKey = "claims"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ContextUserID).(string)
	return uid, ok && uid != ""
}

func ClaimsFromContext(ctx context.Context) (*jwtutil.Claims, bool) {
	claims, ok := ctx.Value(ContextClaims).(*jwtutil.Claims)
	return claims, ok && claims != nil
}
