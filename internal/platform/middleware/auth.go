package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"tokengate/pkg/domain"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*CallerClaims, error)
}

// CallerClaims represents the claims we expect from the token validator.
// The ledger only needs an already-authenticated account identity.
type CallerClaims struct {
	Account domain.Address
	JTI     string
}

type contextKeyCaller struct{}

// ContextKeyCaller is exported for use in handlers and tests.
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller account from the context.
// The zero address means the request was not authenticated.
func GetCaller(ctx context.Context) domain.Address {
	caller, ok := ctx.Value(ContextKeyCaller).(domain.Address)
	if !ok {
		return domain.ZeroAddress
	}
	return caller
}

// RequireAuth authenticates the caller from a Bearer token and stores the
// account address in the request context. Cryptographic identity beyond the
// token signature is out of scope; the ledger trusts the resolved address.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}
			if claims.Account.IsZero() {
				logger.WarnContext(ctx, "unauthorized access - token without account subject",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Token does not identify an account")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyCaller, claims.Account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
