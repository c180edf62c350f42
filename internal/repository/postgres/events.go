package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-ordering-service/internal/repository"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type eventLog struct {
	db *sql.DB
}

// NewEventLog creates an EventLog backed by the order_events table, one
// JSONB document per event in insertion order.
func NewEventLog(db *sql.DB) repository.EventLog {
	return &eventLog{db: db}
}

func (l *eventLog) Insert(ctx context.Context, id string, doc []byte) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO order_events (id, doc) VALUES ($1, $2)", id, doc,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrDuplicateEvent
	}
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", id, err)
	}
	return nil
}

func (l *eventLog) FindByAggregateID(ctx context.Context, aggregateID string) ([][]byte, error) {
	return l.query(ctx,
		"SELECT doc FROM order_events WHERE doc->'aggregate'->>'id' = $1 ORDER BY seq ASC",
		aggregateID,
	)
}

func (l *eventLog) FindByTrackerID(ctx context.Context, trackerID string) ([][]byte, error) {
	return l.query(ctx,
		"SELECT doc FROM order_events WHERE doc->>'tracker_id' = $1 ORDER BY seq ASC",
		trackerID,
	)
}

func (l *eventLog) FindLatestByAggregateID(ctx context.Context, aggregateID string) ([]byte, error) {
	var doc []byte
	err := l.db.QueryRowContext(ctx,
		`SELECT doc FROM order_events WHERE doc->'aggregate'->>'id' = $1
		 ORDER BY (doc->>'version')::int DESC LIMIT 1`,
		aggregateID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest event for %s: %w", aggregateID, err)
	}
	return doc, nil
}

func (l *eventLog) query(ctx context.Context, stmt, arg string) ([][]byte, error) {
	rows, err := l.db.QueryContext(ctx, stmt, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return docs, nil
}
