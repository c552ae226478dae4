package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// OpenFunc constructs a DocumentStore.
type OpenFunc func(ctx context.Context) (domain.DocumentStore, error)

// Lazy opens the document store on first use and shares it afterwards.
// A failed open is not cached; the next caller tries again.
type Lazy struct {
	mu    sync.Mutex
	open  OpenFunc
	store domain.DocumentStore
}

// NewLazy returns a handle that calls open at most once successfully.
func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

// Store returns the shared store, opening it if needed.
func (l *Lazy) Store(ctx context.Context) (domain.DocumentStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}

	s, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	slog.InfoContext(ctx, "document store initialized")
	l.store = s
	return s, nil
}

// Ping opens the store if needed and checks connectivity.
func (l *Lazy) Ping(ctx context.Context) error {
	s, err := l.Store(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close releases the store if it was opened.
func (l *Lazy) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		l.store.Close()
		l.store = nil
	}
}
