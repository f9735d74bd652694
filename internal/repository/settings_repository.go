package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const adminPasswordKey = "admin_password"

// SettingsRepository stores the single admin secret (as a bcrypt hash) in
// the admin_config table.
type SettingsRepository interface {
	GetAdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a Postgres-backed implementation.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetAdminPasswordHash(ctx context.Context) (string, error) {
	const query = `SELECT value FROM admin_config WHERE key=$1`

	var hash string
	if err := r.pool.QueryRow(ctx, query, adminPasswordKey).Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

func (r *settingsRepository) SetAdminPasswordHash(ctx context.Context, hash string) error {
	const query = `
        INSERT INTO admin_config (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, adminPasswordKey, hash)
	return err
}
