package db

import (
	"context"
	"sync"

	"luna-bot/internal/models"
)

// MemoryDB keeps profiles in a map. Suitable for tests and local runs.
type MemoryDB struct {
	mu       sync.RWMutex
	profiles map[int64]*models.Profile
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{profiles: make(map[int64]*models.Profile)}
}

func (db *MemoryDB) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (db *MemoryDB) Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.profiles[userID]
	if !ok {
		p = &models.Profile{UserID: userID}
		db.profiles[userID] = p
	}
	update.Apply(p)
	return nil
}

func (db *MemoryDB) Migrate(ctx context.Context) error { return nil }

func (db *MemoryDB) Ping(ctx context.Context) error { return nil }

func (db *MemoryDB) Close() error { return nil }
