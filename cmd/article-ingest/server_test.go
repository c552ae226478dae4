package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetuya0525/article-ingest-service/config"
	"github.com/tetuya0525/article-ingest-service/utils/otel"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "8080",
		StorageDriver:         config.StorageDriverMemory,
		DBMaxConns:            1,
		StorageCommitTimeout:  time.Second,
		AuthAudience:          "memory-library-ingest",
		AuthHMACSecret:        testSecret,
		AuthVerifyTimeout:     time.Second,
		AuthCacheTTL:          time.Minute,
		AuthCacheSize:         16,
		EventsStream:          "memlib:staging:articles",
		EventsPublishTimeout:  time.Second,
		ReportForwardTimeout:  time.Second,
		ReportMaxPayloadBytes: 4096,
		BodyLimit:             "1M",
		RateLimitPerMinute:    600,
		RateLimitBurst:        50,
		CORSAllowOrigins:      []string{"*"},
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := newApp(ctx, testConfig(), otel.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close(context.Background()) })
	return a
}

func serve(a *app, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "librarian-svc",
		Audience:  jwt.ClaimStrings{"memory-library-ingest"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestApp_Preflight(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://console.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := serve(a, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
	assert.Equal(t, "3600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestApp_IngestRoundTrip(t *testing.T) {
	a := newTestApp(t)

	body := `{"title": "t", "sourceType": "web", "keywords": ["x"], "content": {"rawText": "r"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t))
	req.Header.Set(echo.HeaderOrigin, "https://console.example")
	rec := serve(a, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(1), resp["stagedTermCount"])
}

func TestApp_RejectsUnauthenticated(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := serve(a, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestApp_MethodNotAllowed(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method not allowed")
}

func TestApp_HealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","storage":"ok"}`, rec.Body.String())

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewApp_RejectsBadRSAKey(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRSAPublicKey = "not a pem"

	_, err := newApp(context.Background(), cfg, otel.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_RSA_PUBLIC_KEY")
}

func TestRunHealthcheck(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	assert.NoError(t, runHealthcheck(healthy.URL))

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()
	err := runHealthcheck(unhealthy.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate", "healthcheck"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
