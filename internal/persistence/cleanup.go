package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

// ClearScope selects which locally stored data a clear removes.
type ClearScope int

const (
	ClearSnapshot ClearScope = 1 << iota
	ClearSettings

	ClearAll = ClearSnapshot | ClearSettings
)

//goland:noinspection SqlWithoutWhere
var clearStatements = []struct {
	scope ClearScope
	stmt  string
}{
	{scope: ClearSnapshot, stmt: `DELETE FROM snapshots;`},
	{scope: ClearSettings, stmt: `DELETE FROM settings_cache;`},
}

// ClearDatabase drops the stored snapshot and the settings cache.
func ClearDatabase(ctx context.Context, db *sql.DB) error {
	return Clear(ctx, db, ClearAll)
}

// Clear removes the tables selected by scope in one transaction.
func Clear(ctx context.Context, db *sql.DB, scope ClearScope) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}
	if scope&ClearAll == 0 {
		return fmt.Errorf("empty clear scope")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range clearStatements {
		if scope&entry.scope == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, entry.stmt); err != nil {
			return fmt.Errorf("clear %s: %w", entry.scope, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear tx: %w", err)
	}

	return nil
}

func (s ClearScope) String() string {
	switch s {
	case ClearSnapshot:
		return "snapshot"
	case ClearSettings:
		return "settings cache"
	case ClearAll:
		return "all"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}
