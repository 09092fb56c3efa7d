package memory

import (
	"context"
	"sync"

	"github.com/linkboard/linkboard/internal/directory"
)

// UserStore keeps caller identities in process memory. Identities are seeded
// at startup (from config) and never mutated by the service.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]directory.User
	byToken map[string]string
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]directory.User),
		byToken: make(map[string]string),
	}
}

// Seed registers a user and its bearer token.
func (s *UserStore) Seed(user directory.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	if token != "" {
		s.byToken[token] = user.ID
	}
}

// Get fetches a user by ID.
func (s *UserStore) Get(_ context.Context, id string) (directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return user, nil
}

// GetByToken resolves a bearer token to its user.
func (s *UserStore) GetByToken(_ context.Context, token string) (directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return s.users[id], nil
}
