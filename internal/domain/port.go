package domain

import "context"

// TokenVerifier checks a bearer token against the expected audience.
type TokenVerifier interface {
	Verify(ctx context.Context, token, audience string) (*Identity, error)
}

// IdentityCache remembers successful verifications keyed by a token digest.
type IdentityCache interface {
	Get(token string) (*Identity, bool)
	Add(token string, identity *Identity)
}

// DocumentStore is the only view of the database the staging path needs:
// id generation ahead of the commit and an atomic multi-document write.
type DocumentStore interface {
	NewDocumentID(collection string) string
	BeginBatch() WriteBatch
	Ping(ctx context.Context) error
	Close()
}

// WriteBatch collects document writes that commit together or not at all.
type WriteBatch interface {
	Set(collection, id string, fields map[string]any)
	Commit(ctx context.Context) error
}

// StoreProvider hands out the process-wide DocumentStore, creating it on first use.
type StoreProvider interface {
	Store(ctx context.Context) (DocumentStore, error)
}

// StagedEventPublisher notifies consumers that a batch was staged.
type StagedEventPublisher interface {
	PublishStaged(ctx context.Context, event StagedEvent) error
}
