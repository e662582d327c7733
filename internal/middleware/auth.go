package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type principalKey struct{}

// WithPrincipal stores the authenticated subject in the context.
func WithPrincipal(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, principalKey{}, subject)
}

// PrincipalFromContext extracts the authenticated subject from the context.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalKey{}).(string)
	return name, ok && name != ""
}

// RejectFunc writes the response for a request that failed authentication.
type RejectFunc func(w http.ResponseWriter, r *http.Request, message string)

func rejectJSON(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusUnauthorized, "Unauthorized", message)
}

// Auth requires a valid bearer token on every request and answers failures
// with a 401 error body. A nil validator disables the check.
func Auth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return AuthWith(validator, logger, rejectJSON)
}

// AuthWith is Auth with a custom rejection response.
func AuthWith(validator JWTValidator, logger *slog.Logger, reject RejectFunc) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if reject == nil {
		reject = rejectJSON
	}
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				reject(w, r, "missing bearer token")
				return
			}
			claims, err := validator.Validate(r.Context(), token)
			if err != nil {
				logger.Debug("bearer token rejected",
					"error", err, "request_id", RequestIDFromContext(r.Context()))
				reject(w, r, "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Subject)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
