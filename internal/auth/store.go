// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/logging"
)

// Store defines the interface for session storage backends.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if not found.
	// Returns ErrSessionExpired if the session exists but is expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Touch updates the session's last accessed time and extends expiry.
	// Returns ErrSessionNotFound if not found.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// Delete removes a session by ID. Deleting a session that does not
	// exist is not an error.
	Delete(ctx context.Context, id string) error

	// CleanupExpired removes all expired sessions and returns the count.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of sessions currently held, expired or not.
	Count(ctx context.Context) (int, error)

	// Close releases any underlying storage resources.
	Close() error
}

// NewStore creates the session store selected by configuration: a BadgerDB
// store when SessionStorePath is set, an in-memory store otherwise.
func NewStore(cfg config.AuthConfig) (Store, error) {
	if cfg.SessionStorePath != "" {
		store, err := OpenBadgerStore(cfg.SessionStorePath)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.SessionStorePath).Msg("Using persistent session store")
		return store, nil
	}
	logging.Info().Msg("Using in-memory session store, sessions will not survive restarts")
	return NewMemoryStore(), nil
}

// MemoryStore is an in-memory implementation of Store. Suitable for
// development and single-instance deployments that tolerate re-login after a
// restart; set SESSION_STORE_PATH for the persistent BadgerDB store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session.
func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so later caller mutations cannot reach into the store.
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	copied := *session
	return &copied, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *MemoryStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	return nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// CleanupExpired removes all expired sessions.
func (s *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of stored sessions.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
