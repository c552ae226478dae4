package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// ErrDocumentExists is returned when a batch would overwrite a stored document.
var ErrDocumentExists = errors.New("document already exists")

// MemoryStore keeps documents in process memory. It backs local runs and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
	failNext    error
	commits     int
}

// NewMemoryStore creates an empty store with both staging collections.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string]map[string]map[string]any{
			domain.CollectionStagingArticles:   {},
			domain.CollectionStagingDictionary: {},
		},
		now: time.Now,
	}
}

// FailNextCommit makes the next Commit return err without writing anything.
func (s *MemoryStore) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Documents returns a copy of every document in a collection keyed by id.
func (s *MemoryStore) Documents(collection string) map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		out[id] = maps.Clone(doc)
	}
	return out
}

// Commits returns the number of successful commits.
func (s *MemoryStore) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

func (s *MemoryStore) NewDocumentID(_ string) string {
	return uuid.NewString()
}

func (s *MemoryStore) BeginBatch() domain.WriteBatch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() {}

type memoryBatch struct {
	store  *MemoryStore
	writes []pendingWrite
}

func (b *memoryBatch) Set(collection, id string, fields map[string]any) {
	b.writes = append(b.writes, pendingWrite{collection: collection, id: id, fields: fields})
}

// Commit checks the whole batch first and only then applies it under one lock.
func (b *memoryBatch) Commit(ctx context.Context) error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}

	seen := make(map[string]struct{}, len(b.writes))
	for _, w := range b.writes {
		docs, ok := s.collections[w.collection]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, w.collection)
		}
		key := w.collection + "/" + w.id
		if _, exists := docs[w.id]; exists {
			return fmt.Errorf("%w: %s", ErrDocumentExists, key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrDocumentExists, key)
		}
		seen[key] = struct{}{}
	}

	ts := s.now().UTC()
	for _, w := range b.writes {
		doc := make(map[string]any, len(w.fields)+2)
		maps.Copy(doc, w.fields)
		doc["createdAt"] = ts
		doc["updatedAt"] = ts
		s.collections[w.collection][w.id] = doc
	}
	s.commits++
	return nil
}
