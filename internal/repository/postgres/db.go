package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

const defaultTimeout = 10 * time.Second

// ConnectDB opens a PostgreSQL connection pool and verifies it with a ping.
func ConnectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS sets (
	id TEXT PRIMARY KEY,
	device_id TEXT NOT NULL,
	workout_type TEXT,
	weight_lb DOUBLE PRECISION,
	weight_is_bodyweight BOOLEAN NOT NULL DEFAULT FALSE,
	reps INTEGER,
	rest_seconds INTEGER,
	duration_seconds INTEGER,
	performed_at_iso TEXT,
	created_at_iso TEXT NOT NULL,
	updated_at_iso TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sets_device_performed ON sets(device_id, performed_at_iso DESC);
`

// EnsureSchema creates the sets table and its index if they do not exist.
// Existing tables are left alone, so older deployments may still lack the
// newer optional columns.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
