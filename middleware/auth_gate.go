package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/metrics"
	"github.com/tetuya0525/article-ingest-service/utils/logger"
)

type identityKey struct{}

// Authenticator resolves an Authorization header into an identity.
type Authenticator interface {
	Execute(ctx context.Context, authorization string) (*domain.Identity, error)
}

// BearerAuth rejects requests without a valid bearer token before the
// handler runs: 401 when no token is presented, 403 when it fails
// verification. The verification reason is never sent to the client.
func BearerAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			identity, err := auth.Execute(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.RecordIngest(metrics.OutcomeUnauthenticated)
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="memory-library"`)
					return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
				}
				metrics.RecordIngest(metrics.OutcomeForbidden)
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}

			ctx := context.WithValue(req.Context(), identityKey{}, identity)
			ctx = logger.WithCallerSubject(ctx, identity.Subject)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// IdentityFromContext returns the identity attached by BearerAuth.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}
