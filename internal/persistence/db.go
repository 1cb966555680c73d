package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register sqlite driver
)

// connPragmas run once after the pool is pinned to a single connection.
var connPragmas = []struct {
	name string
	stmt string
}{
	{name: "wal mode", stmt: `PRAGMA journal_mode = WAL;`},
	{name: "busy timeout", stmt: `PRAGMA busy_timeout = 5000;`},
	{name: "synchronous", stmt: `PRAGMA synchronous = NORMAL;`},
}

// Open opens the dashboard database at path and migrates it to the current
// schema. Snapshot writes are serialized by WriterQueue, so the pool holds a
// single connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := prepare(ctx, db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, pragma := range connPragmas {
		if _, err := db.ExecContext(ctx, pragma.stmt); err != nil {
			return fmt.Errorf("set %s: %w", pragma.name, err)
		}
	}

	return migrate(ctx, db)
}
