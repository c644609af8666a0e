package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(64) NOT NULL,
	id VARCHAR(128) NOT NULL,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (collection, id)
)`

// SQLStore keeps documents in a single table. Binds are rebound for postgres and sqlite.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLStore creates a new SQLStore instance
func NewSQLStore(db *sqlx.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureSchema creates the documents table when missing
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	var docs []document
	query := `SELECT collection, id, body FROM documents ORDER BY collection, id`
	if err := s.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return buildSnapshot(docs), nil
}

func (s *SQLStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var docs []document
	query := s.db.Rebind(`SELECT collection, id, body FROM documents WHERE collection = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &docs, query, collection); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d.Body)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string, dest any) error {
	var body string
	query := s.db.Rebind(`SELECT body FROM documents WHERE collection = ? AND id = ?`)
	err := s.db.GetContext(ctx, &body, query, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	query := s.db.Rebind(`
		INSERT INTO documents (collection, id, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE
		SET body = excluded.body, updated_at = excluded.updated_at
	`)

	if _, err := s.db.ExecContext(ctx, query, collection, id, body, s.now().UTC()); err != nil {
		s.logger.Error("Failed to upsert document",
			slog.String("collection", collection),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}

	s.logger.Debug("Document upserted",
		slog.String("collection", collection),
		slog.String("id", id),
		slog.Int("body_size", len(body)),
	)
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	query := s.db.Rebind(`DELETE FROM documents WHERE collection = ? AND id = ?`)
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		s.logger.Error("Failed to delete document",
			slog.String("collection", collection),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close is a no-op; the database client owns the connection
func (s *SQLStore) Close() error {
	return nil
}
