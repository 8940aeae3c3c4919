package middleware

import (
	"context"
	"net/http"
	"strings"

	"auth-service/pkg/jwtutil"
	"auth-service/pkg/response"
	"auth-service/pkg/xerrors"
)

// AccessValidator is the two-tier token check: signature/expiry plus session
// liveness.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*jwtutil.Claims, error)
}

type AuthMiddleware struct {
	validator AccessValidator
}

func NewAuthMiddleware(validator AccessValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Require rejects requests without a live bearer token and stores the claims
// in the request context for handlers.
func (am *AuthMiddleware) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearer(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := am.validator.ValidateAccess(r.Context(), token)
			if err != nil {
				response.ErrorCode(w, http.StatusUnauthorized, xerrors.CodeOf(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
