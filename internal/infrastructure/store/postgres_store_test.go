package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// docWith matches a JSON document argument that carries the given key/value.
type docWith struct {
	key   string
	value any
}

func (d docWith) Match(v any) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	return doc[d.key] == d.value
}

func TestPostgresStore_CommitWritesAllInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_articles").
		WithArgs("a1", docWith{key: "status", value: "received"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO staging_dictionary").
		WithArgs("d1", docWith{key: "termName", value: "go"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO staging_dictionary").
		WithArgs("d2", docWith{key: "termName", value: "rust"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	b := s.BeginBatch()
	b.Set(domain.CollectionStagingArticles, "a1", map[string]any{"status": "received"})
	b.Set(domain.CollectionStagingDictionary, "d1", map[string]any{"termName": "go"})
	b.Set(domain.CollectionStagingDictionary, "d2", map[string]any{"termName": "rust"})

	require.NoError(t, b.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)
	insertErr := errors.New("unique_violation")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_articles").
		WithArgs("a1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO staging_dictionary").
		WithArgs("d1", pgxmock.AnyArg()).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	b := s.BeginBatch()
	b.Set(domain.CollectionStagingArticles, "a1", map[string]any{"title": "t"})
	b.Set(domain.CollectionStagingDictionary, "d1", map[string]any{"termName": "go"})

	err = b.Commit(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, insertErr)
	assert.Contains(t, err.Error(), "insert staging_dictionary/d1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO staging_articles").
		WithArgs("a1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	b := s.BeginBatch()
	b.Set(domain.CollectionStagingArticles, "a1", map[string]any{"title": "t"})

	err = b.Commit(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
}

func TestPostgresStore_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	b := s.BeginBatch()
	b.Set(domain.CollectionStagingArticles, "a1", map[string]any{"title": "t"})

	err = b.Commit(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UnknownCollectionNeverOpensTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)

	b := s.BeginBatch()
	b.Set("articles", "x", map[string]any{})

	err = b.Commit(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EmptyBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)

	assert.NoError(t, s.BeginBatch().Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stmts := SchemaStatements()
	require.Len(t, stmts, 4)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS staging_articles").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_staging_articles_status").
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS staging_dictionary").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_staging_dictionary_term").
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS staging_articles").
		WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), mock)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema statement 1")
}
