package api

import (
	"errors"
	"log/slog"
	"net/http"

	"colhash/internal/domain"
	"colhash/internal/middleware"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var validation *domain.ValidationError
	var parse *domain.ParseError
	var conflict *domain.ConflictError
	var store *domain.StoreError

	switch {
	case errors.As(err, &validation), errors.As(err, &parse):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &store):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err as an error body. Server-side failures are
// logged with the request ID and their cause is not echoed to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"path", r.URL.Path,
			"status", status,
			"error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		} else {
			msg = "mapping store unavailable"
		}
	}
	middleware.WriteError(w, r, status, domain.ErrorKind(err), msg)
}
