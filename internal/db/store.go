package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"luna-bot/internal/models"
)

// ProfileStore is the durable per-user record. Get returns (nil, nil) when
// the user has no row yet. Upsert writes only the fields set in the update.
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*models.Profile, error)
	Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Serialized wraps a store so that upserts for the same user id never run
// concurrently. Different users proceed in parallel.
type Serialized struct {
	ProfileStore

	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func Serialize(store ProfileStore) *Serialized {
	return &Serialized{
		ProfileStore: store,
		locks:        make(map[int64]*keyLock),
	}
}

func (s *Serialized) Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	unlock := s.Lock(userID)
	defer unlock()
	return s.ProfileStore.Upsert(ctx, userID, update)
}

// Lock acquires the per-user lock and returns its release func.
func (s *Serialized) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &keyLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// upsertArgs flattens an update into nullable column values plus the
// "was supplied" flag for each of gender, color_type, palette, subscription_expiry.
type upsertArgs struct {
	gender    *string
	colorType *string
	palette   *string
	expiry    *time.Time
	set       [4]bool
}

func newUpsertArgs(u models.ProfileUpdate) (upsertArgs, error) {
	var a upsertArgs
	a.set = [4]bool{u.Gender.Set, u.ColorType.Set, u.Palette.Set, u.SubscriptionExpiry.Set}

	if u.Gender.Set && u.Gender.Value != "" {
		g := string(u.Gender.Value)
		a.gender = &g
	}
	if u.ColorType.Set && u.ColorType.Value != "" {
		ct := string(u.ColorType.Value)
		a.colorType = &ct
	}
	if u.Palette.Set && u.Palette.Value != nil {
		p, err := encodePalette(u.Palette.Value)
		if err != nil {
			return a, err
		}
		a.palette = &p
	}
	if u.SubscriptionExpiry.Set && u.SubscriptionExpiry.Value != nil {
		t := u.SubscriptionExpiry.Value.UTC()
		a.expiry = &t
	}
	return a, nil
}

func encodePalette(palette []string) (string, error) {
	if len(palette) > models.MaxPaletteSize {
		palette = palette[:models.MaxPaletteSize]
	}
	b, err := json.Marshal(palette)
	if err != nil {
		return "", fmt.Errorf("failed to encode palette: %w", err)
	}
	return string(b), nil
}

func decodePalette(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var palette []string
	if err := json.Unmarshal([]byte(*raw), &palette); err != nil {
		return nil, fmt.Errorf("failed to decode palette: %w", err)
	}
	return palette, nil
}

func profileFromRow(id int64, gender, colorType, palette *string, expiry *time.Time) (*models.Profile, error) {
	p := &models.Profile{UserID: id}
	if gender != nil {
		p.Gender = models.Gender(*gender)
	}
	if colorType != nil {
		p.ColorType = models.ColorType(*colorType)
	}
	pal, err := decodePalette(palette)
	if err != nil {
		return nil, err
	}
	p.Palette = pal
	if expiry != nil {
		t := expiry.UTC()
		p.SubscriptionExpiry = &t
	}
	return p, nil
}
