package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// Public messages. Internal causes are logged, never returned.
const (
	msgInvalidJSON     = "Invalid JSON"
	msgUnparsableJSON  = "Could not parse request body as JSON"
	msgAuthRequired    = "Authentication required"
	msgForbidden       = "Forbidden"
	msgStorageFailure  = "An internal error occurred while writing to the database."
	msgInternalError   = "An internal error occurred."
	msgIngestSucceeded = "Article successfully ingested."
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
func mapDomainError(err error) *echo.HTTPError {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)

	case errors.Is(err, domain.ErrInvalidPayload):
		return echo.NewHTTPError(http.StatusBadRequest, msgUnparsableJSON)

	case errors.Is(err, domain.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, msgAuthRequired)

	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)

	case errors.Is(err, domain.ErrStorage),
		errors.Is(err, domain.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, msgStorageFailure)

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternalError)
	}
}
