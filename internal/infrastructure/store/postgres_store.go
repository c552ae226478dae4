package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// PgxIface is the subset of *pgxpool.Pool used by PostgresStore.
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Each collection is a table of JSONB documents. Timestamps come from the
// transaction so every row in one commit shares the same instant.
var insertStatements = map[string]string{
	domain.CollectionStagingArticles: `INSERT INTO staging_articles (id, document, created_at, updated_at)
		VALUES ($1, $2::jsonb || jsonb_build_object('createdAt', transaction_timestamp(), 'updatedAt', transaction_timestamp()),
			transaction_timestamp(), transaction_timestamp())`,
	domain.CollectionStagingDictionary: `INSERT INTO staging_dictionary (id, document, created_at, updated_at)
		VALUES ($1, $2::jsonb || jsonb_build_object('createdAt', transaction_timestamp(), 'updatedAt', transaction_timestamp()),
			transaction_timestamp(), transaction_timestamp())`,
}

// PostgresStore stores staging documents in PostgreSQL.
type PostgresStore struct {
	pool PgxIface
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool PgxIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewDocumentID returns a fresh random id. Ids are unique across collections.
func (s *PostgresStore) NewDocumentID(_ string) string {
	return uuid.NewString()
}

// BeginBatch starts collecting writes for one transaction.
func (s *PostgresStore) BeginBatch() domain.WriteBatch {
	return &postgresBatch{pool: s.pool}
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

type pendingWrite struct {
	collection string
	id         string
	fields     map[string]any
}

type postgresBatch struct {
	pool   PgxIface
	writes []pendingWrite
}

func (b *postgresBatch) Set(collection, id string, fields map[string]any) {
	b.writes = append(b.writes, pendingWrite{collection: collection, id: id, fields: fields})
}

// Commit writes every pending document in a single transaction.
func (b *postgresBatch) Commit(ctx context.Context) (err error) {
	if len(b.writes) == 0 {
		return nil
	}

	docs := make([][]byte, len(b.writes))
	for i, w := range b.writes {
		if _, ok := insertStatements[w.collection]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, w.collection)
		}
		doc, err := json.Marshal(w.fields)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", w.collection, w.id, err)
		}
		docs[i] = doc
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && err != nil {
			slog.WarnContext(ctx, "failed to rollback staging transaction", "error", rbErr)
		}
	}()

	for i, w := range b.writes {
		if _, err := tx.Exec(ctx, insertStatements[w.collection], w.id, docs[i]); err != nil {
			return fmt.Errorf("insert %s/%s: %w", w.collection, w.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
