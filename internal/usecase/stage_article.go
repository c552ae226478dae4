package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/metrics"
)

// StageArticle writes an article and its term candidates in one atomic batch.
type StageArticle struct {
	stores        domain.StoreProvider
	commitTimeout time.Duration
	logger        *slog.Logger
}

// NewStageArticle creates the use case. A zero commitTimeout means no extra bound.
func NewStageArticle(stores domain.StoreProvider, commitTimeout time.Duration, logger *slog.Logger) *StageArticle {
	return &StageArticle{stores: stores, commitTimeout: commitTimeout, logger: logger}
}

// Execute stages the article. Either every document is written or none is.
// The write is not retried.
func (uc *StageArticle) Execute(ctx context.Context, article *domain.Article, terms []string, submittedAt time.Time) (*domain.StageResult, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	articleID := store.NewDocumentID(domain.CollectionStagingArticles)
	termIDs := make([]string, len(terms))
	for i := range terms {
		termIDs[i] = store.NewDocumentID(domain.CollectionStagingDictionary)
	}

	batch := store.BeginBatch()
	batch.Set(domain.CollectionStagingArticles, articleID, articleDocument(article, submittedAt))
	for i, term := range terms {
		batch.Set(domain.CollectionStagingDictionary, termIDs[i], termDocument(term, articleID))
	}

	if uc.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.commitTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := batch.Commit(ctx); err != nil {
		metrics.RecordStage("error", time.Since(start).Seconds(), len(terms))
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	metrics.RecordStage("success", time.Since(start).Seconds(), len(terms))

	uc.logger.InfoContext(ctx, "article staged",
		"article_id", articleID,
		"staged_term_count", len(terms),
	)

	return &domain.StageResult{
		ArticleID:       articleID,
		TermIDs:         termIDs,
		StagedTermCount: len(terms),
	}, nil
}

func articleDocument(a *domain.Article, submittedAt time.Time) map[string]any {
	return map[string]any{
		"title":       a.Title,
		"sourceType":  a.SourceType,
		"description": a.Description,
		"keywords":    a.KeywordList(),
		"content": map[string]any{
			"rawText":        a.RawText,
			"structuredData": a.StructuredData,
		},
		"aiGenerated": map[string]any{
			"categories": []any{},
			"tags":       []any{},
		},
		"status":      domain.ArticleStatusReceived,
		"submittedAt": submittedAt.UTC(),
	}
}

func termDocument(term, articleID string) map[string]any {
	return map[string]any{
		"termName":              term,
		"mentionedInArticleIds": []any{articleID},
		"status":                domain.TermStatusNewCandidate,
		"version":               domain.TermInitialVersion,
	}
}
