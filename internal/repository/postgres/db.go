package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// InitDB opens the Postgres connection pool and runs migrations. The
// pool is a long-lived singleton shared by every command; lib/pq
// re-establishes broken connections lazily on the next use.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS order_snapshots (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_events (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			doc JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS order_events_aggregate_id_idx
			ON order_events ((doc->'aggregate'->>'id'));
		CREATE INDEX IF NOT EXISTS order_events_tracker_id_idx
			ON order_events ((doc->>'tracker_id'));
	`)
	return err
}
