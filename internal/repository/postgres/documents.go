package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ordering-service/internal/repository"
)

type documentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a DocumentStore backed by the
// order_snapshots table, one JSONB document per order keyed by id.
func NewDocumentStore(db *sql.DB) repository.DocumentStore {
	return &documentStore{db: db}
}

func (s *documentStore) FindByID(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM order_snapshots WHERE id = $1", id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", id, err)
	}
	return doc, nil
}

func (s *documentStore) Replace(ctx context.Context, id string, doc []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_snapshots (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		id, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", id, err)
	}
	return nil
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM order_snapshots WHERE id = $1", id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}
