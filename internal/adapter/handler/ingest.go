package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/internal/infrastructure/reporting"
	"github.com/tetuya0525/article-ingest-service/metrics"
	"github.com/tetuya0525/article-ingest-service/middleware"
	"github.com/tetuya0525/article-ingest-service/utils/logger"
)

// Ingester runs the validate-and-stage pipeline.
type Ingester interface {
	Execute(ctx context.Context, raw any) (*domain.StageResult, error)
}

// ErrorReporter records rejected and failed submissions.
type ErrorReporter interface {
	Report(ctx context.Context, severity reporting.Severity, message string, fields map[string]any)
}

// IngestHandler handles POST / submissions.
type IngestHandler struct {
	ingest   Ingester
	reporter ErrorReporter
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingest Ingester, reporter ErrorReporter) *IngestHandler {
	return &IngestHandler{ingest: ingest, reporter: reporter}
}

// Handle processes one article submission.
func (h *IngestHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimit surfaces as an *echo.HTTPError from Read.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge)
		}
		metrics.RecordIngest(metrics.OutcomeBadRequest)
		return echo.NewHTTPError(http.StatusBadRequest, msgUnparsableJSON)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		metrics.RecordIngest(metrics.OutcomeBadRequest)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidJSON)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "could not parse request body", "error", err)
		metrics.RecordIngest(metrics.OutcomeBadRequest)
		return mapDomainError(domain.ErrInvalidPayload)
	}
	if raw == nil {
		metrics.RecordIngest(metrics.OutcomeBadRequest)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidJSON)
	}

	result, err := h.ingest.Execute(ctx, raw)
	if err != nil {
		h.reportFailure(ctx, err, raw)
		return mapDomainError(err)
	}

	ctx = logger.WithArticleID(ctx, result.ArticleID)
	logger.FromContext(ctx).InfoContext(ctx, "article ingested", "staged_term_count", result.StagedTermCount)
	metrics.RecordIngest(metrics.OutcomeStaged)

	count := result.StagedTermCount
	return c.JSON(http.StatusCreated, Response{
		Status:          "success",
		Message:         msgIngestSucceeded,
		DocumentID:      result.ArticleID,
		StagedTermCount: &count,
	})
}

func (h *IngestHandler) reportFailure(ctx context.Context, err error, payload any) {
	fields := map[string]any{"payload": payload}
	if identity, ok := middleware.IdentityFromContext(ctx); ok {
		fields["caller"] = identity.Subject
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		metrics.RecordIngest(metrics.OutcomeInvalid)
		fields["reason"] = verr.Message
		fields["field"] = verr.Field
		fields["validation_reason"] = string(verr.Reason)
		h.reporter.Report(ctx, reporting.SeverityWarning, "article submission rejected", fields)
		return
	}

	metrics.RecordIngest(metrics.OutcomeStorageError)
	fields["error"] = err.Error()
	h.reporter.Report(ctx, reporting.SeverityError, "failed to stage article", fields)
}
