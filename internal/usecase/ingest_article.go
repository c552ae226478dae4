package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/metrics"
)

// IngestArticle validates a decoded submission, stages it and announces the result.
type IngestArticle struct {
	stage          *StageArticle
	publisher      domain.StagedEventPublisher
	publishTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewIngestArticle creates the use case. publisher may be nil.
func NewIngestArticle(stage *StageArticle, publisher domain.StagedEventPublisher, publishTimeout time.Duration, logger *slog.Logger) *IngestArticle {
	return &IngestArticle{
		stage:          stage,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		now:            time.Now,
		logger:         logger,
	}
}

// Execute returns a *domain.ValidationError for schema violations and an
// error wrapping domain.ErrStorage when the staging write fails. Nothing is
// written in either case.
func (uc *IngestArticle) Execute(ctx context.Context, raw any) (*domain.StageResult, error) {
	article, err := domain.ValidateSubmission(raw)
	if err != nil {
		return nil, err
	}

	terms := domain.ExtractTerms(article.Keywords)
	submittedAt := uc.now()

	result, err := uc.stage.Execute(ctx, article, terms, submittedAt)
	if err != nil {
		return nil, err
	}

	uc.announce(ctx, article, result, submittedAt)
	return result, nil
}

// announce is best-effort; the article is already committed.
func (uc *IngestArticle) announce(ctx context.Context, article *domain.Article, result *domain.StageResult, at time.Time) {
	if uc.publisher == nil {
		return
	}

	pctx := context.WithoutCancel(ctx)
	if uc.publishTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, uc.publishTimeout)
		defer cancel()
	}

	event := domain.StagedEvent{
		EventID:         uuid.NewString(),
		EventType:       domain.EventTypeArticleStaged,
		ArticleID:       result.ArticleID,
		SourceType:      article.SourceType,
		StagedTermCount: result.StagedTermCount,
		CreatedAt:       at.UTC(),
	}
	if err := uc.publisher.PublishStaged(pctx, event); err != nil {
		metrics.RecordEventPublish("error")
		uc.logger.WarnContext(ctx, "failed to publish staged event",
			"article_id", result.ArticleID,
			"error", err,
		)
		return
	}
	metrics.RecordEventPublish("success")
}
