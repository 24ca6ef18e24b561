package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Store is an in-memory user registry. Emails are matched case-insensitively.
// Returned users are copies; changes go through the Store methods.
type Store struct {
	users   map[ulid.ULID]*User
	byEmail map[string]*User
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore creates a new user store.
func NewStore() *Store {
	return &Store{
		users:   make(map[ulid.ULID]*User),
		byEmail: make(map[string]*User),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new unverified user.
func (s *Store) Create(_ context.Context, email, name, passwordHash string) (*User, error) {
	key := emailKey(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[key]; exists {
		return nil, ErrUserExists
	}

	user := &User{
		ID:           ulid.Make(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}

	s.users[user.ID] = user
	s.byEmail[key] = user

	return user.clone(), nil
}

// GetByID retrieves a user by ID.
func (s *Store) GetByID(_ context.Context, id ulid.ULID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user.clone(), nil
}

// GetByEmail retrieves a user by email.
func (s *Store) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.byEmail[emailKey(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user.clone(), nil
}

// UpdatePasswordHash replaces the stored hash, used after a rehash on login.
func (s *Store) UpdatePasswordHash(_ context.Context, id ulid.ULID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

// MarkVerified flags the account owning email as verified. It reports
// whether the flag changed; verifying twice is not an error.
func (s *Store) MarkVerified(_ context.Context, email string) (*User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.byEmail[emailKey(email)]
	if !exists {
		return nil, false, ErrUserNotFound
	}
	if user.Verified {
		return user.clone(), false, nil
	}

	now := s.now().UTC()
	user.Verified = true
	user.VerifiedAt = &now
	return user.clone(), true, nil
}

// Delete removes a user by ID.
func (s *Store) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrUserNotFound
	}

	delete(s.users, id)
	delete(s.byEmail, emailKey(user.Email))
	return nil
}

// DeleteUnverifiedBefore removes accounts that are still unverified and were
// created before cutoff. It returns how many were removed.
func (s *Store) DeleteUnverifiedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, user := range s.users {
		if user.Verified || !user.CreatedAt.Before(cutoff) {
			continue
		}
		delete(s.users, id)
		delete(s.byEmail, emailKey(user.Email))
		n++
	}
	return n, nil
}

// Len returns the number of registered users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
