package domain

import "time"

// Collection names in the document store.
const (
	CollectionStagingArticles   = "staging_articles"
	CollectionStagingDictionary = "staging_dictionary"
)

// Lifecycle markers written at staging time. Downstream librarians move
// documents on from these.
const (
	ArticleStatusReceived  = "received"
	TermStatusNewCandidate = "new_term_candidate"
	TermInitialVersion     = 1
)

// Article is a submission after validation with every default applied.
type Article struct {
	Title          string
	SourceType     string
	Description    string
	RawText        string
	StructuredData map[string]any

	// Keywords holds the submitted value untouched. It may be nil or not a
	// sequence at all; ExtractTerms decides what survives.
	Keywords any
}

// KeywordList returns the keywords as stored on the staged article.
// A non-sequence value is stored as an empty list.
func (a *Article) KeywordList() []any {
	switch v := a.Keywords.(type) {
	case []any:
		return v
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return list
	default:
		return []any{}
	}
}

// StageResult is returned after a successful staging commit.
type StageResult struct {
	ArticleID       string
	TermIDs         []string
	StagedTermCount int
}

// StagedEvent announces a committed staging batch to downstream consumers.
type StagedEvent struct {
	EventID         string
	EventType       string
	ArticleID       string
	SourceType      string
	StagedTermCount int
	CreatedAt       time.Time
}

// EventTypeArticleStaged is the event type for StagedEvent.
const EventTypeArticleStaged = "ArticleStaged"
