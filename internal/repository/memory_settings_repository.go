package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

type memorySettingsRepository struct {
	mu   sync.RWMutex
	hash string
}

// NewMemorySettingsRepository returns a map-backed settings store.
func NewMemorySettingsRepository() SettingsRepository {
	return &memorySettingsRepository{}
}

func (r *memorySettingsRepository) GetAdminPasswordHash(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.hash == "" {
		return "", pgx.ErrNoRows
	}
	return r.hash, nil
}

func (r *memorySettingsRepository) SetAdminPasswordHash(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hash = hash
	return nil
}
