// Package session keeps the ephemeral pending intent of each user in each
// chat. It lives in memory only and is lost on restart.
package session

import (
	"sync"
	"time"

	"luna-bot/internal/models"
)

const DefaultTTL = 30 * time.Minute

// Key scopes a session to one user in one chat, so members of a group chat
// never resolve each other's intents.
type Key struct {
	ChatID int64
	UserID int64
}

// Store maps a key to at most one pending intent. Entries expire after TTL
// without a successful resolution; expiry is checked lazily on read.
type Store struct {
	mu     sync.RWMutex
	states map[Key]*models.UserState
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		states: make(map[Key]*models.UserState),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Begin records the intent the key should resolve next, replacing any
// previous one.
func (s *Store) Begin(key Key, intent models.Intent) {
	if intent == models.IntentNone {
		s.Clear(key)
		return
	}
	now := s.now()
	s.mu.Lock()
	s.states[key] = &models.UserState{
		ChatID:    key.ChatID,
		UserID:    key.UserID,
		Pending:   intent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()
}

// Pending returns the key's current intent, or IntentNone.
func (s *Store) Pending(key Key) models.Intent {
	s.mu.RLock()
	state, ok := s.states[key]
	s.mu.RUnlock()
	if !ok {
		return models.IntentNone
	}
	if !s.now().Before(state.ExpiresAt) {
		s.expire(key, state)
		return models.IntentNone
	}
	return state.Pending
}

// Take consumes the pending intent if it matches, so that only one event
// resolves it. It reports whether the intent was pending.
func (s *Store) Take(key Key, intent models.Intent) bool {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	if !ok {
		return false
	}
	delete(s.states, key)
	if !now.Before(state.ExpiresAt) {
		return false
	}
	if state.Pending != intent {
		s.states[key] = state
		return false
	}
	return true
}

// Clear drops the key's pending intent. Safe to call when there is none.
func (s *Store) Clear(key Key) {
	s.mu.Lock()
	delete(s.states, key)
	s.mu.Unlock()
}

func (s *Store) expire(key Key, seen *models.UserState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent Begin may have replaced the entry
	if cur, ok := s.states[key]; ok && cur == seen {
		delete(s.states, key)
	}
}
