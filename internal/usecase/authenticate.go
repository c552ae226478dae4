package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/metrics"
)

// Authenticate resolves the Authorization header into a verified identity.
type Authenticate struct {
	verifier domain.TokenVerifier
	cache    domain.IdentityCache
	audience string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAuthenticate creates the use case. cache may be nil.
func NewAuthenticate(verifier domain.TokenVerifier, cache domain.IdentityCache, audience string, timeout time.Duration, logger *slog.Logger) *Authenticate {
	return &Authenticate{
		verifier: verifier,
		cache:    cache,
		audience: audience,
		timeout:  timeout,
		logger:   logger,
	}
}

type verifyResult struct {
	identity *domain.Identity
	err      error
}

// Execute returns ErrUnauthenticated when no bearer token is presented and
// ErrForbidden when the verifier rejects it. The rejection reason is logged
// here and only wrapped for callers that need it.
func (uc *Authenticate) Execute(ctx context.Context, authorization string) (*domain.Identity, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	if uc.cache != nil {
		if identity, hit := uc.cache.Get(token); hit {
			metrics.RecordAuthCache(true)
			return identity, nil
		}
		metrics.RecordAuthCache(false)
	}

	identity, err := uc.verify(ctx, token)
	if err != nil {
		uc.logger.WarnContext(ctx, "token verification failed", "reason", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	}

	if uc.cache != nil {
		uc.cache.Add(token, identity)
	}
	return identity, nil
}

func (uc *Authenticate) verify(ctx context.Context, token string) (*domain.Identity, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	done := make(chan verifyResult, 1)
	go func() {
		identity, err := uc.verifier.Verify(ctx, token, uc.audience)
		done <- verifyResult{identity: identity, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.identity == nil {
			return nil, fmt.Errorf("verifier returned no identity")
		}
		return res.identity, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("verification aborted: %w", ctx.Err())
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
