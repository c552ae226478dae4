package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/tetuya0525/article-ingest-service/config"
	adapterhandler "github.com/tetuya0525/article-ingest-service/internal/adapter/handler"
	"github.com/tetuya0525/article-ingest-service/internal/domain"
	infracache "github.com/tetuya0525/article-ingest-service/internal/infrastructure/cache"
	"github.com/tetuya0525/article-ingest-service/internal/infrastructure/events"
	"github.com/tetuya0525/article-ingest-service/internal/infrastructure/reporting"
	"github.com/tetuya0525/article-ingest-service/internal/infrastructure/store"
	infratoken "github.com/tetuya0525/article-ingest-service/internal/infrastructure/token"
	"github.com/tetuya0525/article-ingest-service/internal/usecase"
	appmiddleware "github.com/tetuya0525/article-ingest-service/middleware"
	"github.com/tetuya0525/article-ingest-service/utils/logger"
	"github.com/tetuya0525/article-ingest-service/utils/otel"
)

const storeOpenTimeout = 10 * time.Second

// app is the wired server plus everything that must be released on shutdown.
type app struct {
	echo      *echo.Echo
	stores    *store.Lazy
	reporter  *reporting.Reporter
	publisher *events.RedisPublisher
}

func (a *app) close(ctx context.Context) error {
	err := a.reporter.Close(ctx)
	if a.publisher != nil {
		if cerr := a.publisher.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close event publisher", "error", cerr)
		}
	}
	a.stores.Close()
	return err
}

// openStore picks the document store backend. The postgres pool is created
// on first use so the process starts even while the database is down.
func openStore(cfg *config.Config) store.OpenFunc {
	if cfg.StorageDriver == config.StorageDriverMemory {
		mem := store.NewMemoryStore()
		return func(context.Context) (domain.DocumentStore, error) { return mem, nil }
	}

	return func(ctx context.Context) (domain.DocumentStore, error) {
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeOpenTimeout)
		defer cancel()

		pool, err := store.NewPostgresPool(openCtx, cfg.DatabaseURL, store.PoolConfig{
			MaxConns: int(cfg.DBMaxConns),
			MinConns: int(cfg.DBMinConns),
		})
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(pool), nil
	}
}

func newVerifier(cfg *config.Config) (*infratoken.JWTVerifier, error) {
	vc := infratoken.VerifierConfig{
		HMACSecret: []byte(cfg.AuthHMACSecret),
		Issuers:    cfg.AuthIssuers,
	}
	if cfg.AuthRSAPublicKey != "" {
		key, err := infratoken.ParseRSAPublicKey(cfg.AuthRSAPublicKey)
		if err != nil {
			return nil, fmt.Errorf("parse AUTH_RSA_PUBLIC_KEY: %w", err)
		}
		vc.RSAPublicKey = key
	}
	return infratoken.NewJWTVerifier(vc)
}

// newApp wires infrastructure, use cases and the echo router. ctx bounds
// background goroutines such as the rate limiter sweep.
func newApp(ctx context.Context, cfg *config.Config, otelCfg otel.Config) (*app, error) {
	log := slog.Default()

	// Infrastructure
	verifier, err := newVerifier(cfg)
	if err != nil {
		return nil, err
	}
	var identityCache domain.IdentityCache
	if cfg.AuthCacheTTL > 0 && cfg.AuthCacheSize > 0 {
		identityCache = infracache.NewIdentityCache(cfg.AuthCacheSize, cfg.AuthCacheTTL)
	}

	stores := store.NewLazy(openStore(cfg))

	var publisher *events.RedisPublisher
	var stagedEvents domain.StagedEventPublisher
	if cfg.RedisURL != "" {
		publisher, err = events.NewRedisPublisherWithURL(cfg.RedisURL, cfg.EventsStream, cfg.EventsMaxLen)
		if err != nil {
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		stagedEvents = publisher
	}

	var sink reporting.RemoteSink
	if otelCfg.Enabled {
		otelSink := reporting.NewOTelSink(nil)
		otelSink.FlushOnError = true
		sink = otelSink
	}
	// The local sink stays off the OTel bridge; sink forwards to the aggregator.
	reporter := reporting.New(logger.NewLocal(os.Stdout), sink, reporting.Options{
		ForwardTimeout:  cfg.ReportForwardTimeout,
		MaxPayloadBytes: cfg.ReportMaxPayloadBytes,
	})

	// Usecases
	authUC := usecase.NewAuthenticate(verifier, identityCache, cfg.AuthAudience, cfg.AuthVerifyTimeout, log)
	stageUC := usecase.NewStageArticle(stores, cfg.StorageCommitTimeout, log)
	ingestUC := usecase.NewIngestArticle(stageUC, stagedEvents, cfg.EventsPublishTimeout, log)

	// Handlers
	ingestHandler := adapterhandler.NewIngestHandler(ingestUC, reporter)
	healthHandler := adapterhandler.NewHealthHandler(stores, 0)

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = adapterhandler.ErrorHandler

	e.Use(appmiddleware.RequestID())
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		MaxAge:       3600,
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	ingestMiddleware := []echo.MiddlewareFunc{}
	if cfg.RateLimitPerMinute > 0 {
		limiter := appmiddleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, max(cfg.RateLimitBurst, 1))
		ingestMiddleware = append(ingestMiddleware, limiter.Middleware())
	}
	ingestMiddleware = append(ingestMiddleware, appmiddleware.BearerAuth(authUC))

	e.POST("/", ingestHandler.Handle, ingestMiddleware...)
	e.GET("/health", healthHandler.Handle)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &app{echo: e, stores: stores, reporter: reporter, publisher: publisher}, nil
}
