package interview

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session version conflict")
)

// Store persists interview sessions. Save performs a compare-and-swap on the
// session version so concurrent writers cannot silently overwrite each other.
type Store interface {
	Create(ctx context.Context, session Session) error
	Load(ctx context.Context, sessionID string) (Session, error)
	Save(ctx context.Context, session Session, expectedVersion int) error
}

// MemoryStore implements Store with an in-memory map, suitable for tests and
// single-node deployments without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore bootstraps an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create stores a fresh session at version 1.
func (s *MemoryStore) Create(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return ErrAlreadyExists
	}

	session.Version = 1
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Load retrieves a session by identifier.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session.Clone(), nil
}

// Save replaces the stored session iff its version still matches
// expectedVersion, then bumps the version.
func (s *MemoryStore) Save(_ context.Context, session Session, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}

	session.Version = expectedVersion + 1
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = session.Clone()
	return nil
}
