package notecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/tubenotes/internal/database"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes_cache (
  cache_key TEXT PRIMARY KEY,
  content TEXT NOT NULL,
  updated_at_unix_ms INTEGER NOT NULL
);
`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS notes_cache (
  cache_key VARCHAR(255) NOT NULL PRIMARY KEY,
  content MEDIUMTEXT NOT NULL,
  updated_at_unix_ms BIGINT NOT NULL
) DEFAULT CHARSET=utf8mb4;
`

const (
	selectQuery = `SELECT content FROM notes_cache WHERE cache_key = ?`

	sqliteUpsertQuery = `INSERT INTO notes_cache (cache_key, content, updated_at_unix_ms) VALUES (?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET content = excluded.content, updated_at_unix_ms = excluded.updated_at_unix_ms`

	mysqlUpsertQuery = `INSERT INTO notes_cache (cache_key, content, updated_at_unix_ms) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE content = VALUES(content), updated_at_unix_ms = VALUES(updated_at_unix_ms)`
)

// SQLStore keeps entries in a notes_cache table of a SQLite or MySQL database.
type SQLStore struct {
	db          *sqlx.DB
	upsertQuery string
	now         func() time.Time
}

// NewSQLiteStore creates the notes_cache table when missing.
func NewSQLiteStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, sqliteSchema, sqliteUpsertQuery)
}

// NewMySQLStore creates the notes_cache table when missing.
func NewMySQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, mysqlSchema, mysqlUpsertQuery)
}

func newSQLStore(ctx context.Context, db *sqlx.DB, schema, upsertQuery string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create notes_cache table: %w", err)
	}
	return &SQLStore{
		db:          db,
		upsertQuery: upsertQuery,
		now:         time.Now,
	}, nil
}

func (store *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var content string
	if err := store.db.GetContext(ctx, &content, selectQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select notes_cache %s: %w", key, err)
	}
	return content, true, nil
}

func (store *SQLStore) Put(ctx context.Context, key, text string) error {
	return database.RunInTx(ctx, store.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, store.upsertQuery, key, text, store.now().UnixMilli()); err != nil {
			return fmt.Errorf("upsert notes_cache %s: %w", key, err)
		}
		return nil
	})
}

func (store *SQLStore) Close() error {
	return store.db.Close()
}
