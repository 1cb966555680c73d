package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brewdash/brewdash/internal/domain"
)

// SettingsRepo keeps the last value the controller accepted per parameter.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Put(ctx context.Context, p domain.Parameter, value float64) error {
	if !p.Valid() {
		return fmt.Errorf("cache setting: unknown parameter %q", p)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings_cache(parameter, value, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(parameter) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, string(p), value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert setting %s: %w", p, err)
	}

	return nil
}

// All returns cached values for known parameters. Rows for parameters this
// build does not know are skipped.
func (r *SettingsRepo) All(ctx context.Context) (map[domain.Parameter]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT parameter, value FROM settings_cache`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Parameter]float64)
	for rows.Next() {
		var (
			name  string
			value float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if p := domain.Parameter(name); p.Valid() {
			out[p] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return out, nil
}
