package users

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.Create(ctx, "Ana@Example.com", "Ana", "$pbkdf2-sha256$1$a$b")
	require.NoError(t, err)
	assert.NotEqual(t, ulid.ULID{}, u.ID)
	assert.False(t, u.Verified)
	assert.Nil(t, u.VerifiedAt)

	byID, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byEmail, err := s.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Ana@Example.com", byEmail.Email)
}

func TestStore_CreateDuplicate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Create(ctx, "a@b.com", "A", "h")
	require.NoError(t, err)

	_, err = s.Create(ctx, " A@B.COM", "Other", "h")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 1, s.Len())
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.GetByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetByID(ctx, ulid.Make())
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, s.UpdatePasswordHash(ctx, ulid.Make(), "x"), ErrUserNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ulid.Make()), ErrUserNotFound)

	_, _, err = s.MarkVerified(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, _ := s.Create(ctx, "a@b.com", "A", "h1")
	u.PasswordHash = "tampered"
	u.Verified = true

	got, _ := s.GetByID(ctx, u.ID)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.False(t, got.Verified)
}

func TestStore_UpdatePasswordHash(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, _ := s.Create(ctx, "a@b.com", "A", "old")
	require.NoError(t, s.UpdatePasswordHash(ctx, u.ID, "new"))

	got, _ := s.GetByEmail(ctx, "a@b.com")
	assert.Equal(t, "new", got.PasswordHash)
}

func TestStore_MarkVerified(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, _ = s.Create(ctx, "a@b.com", "A", "h")

	u, changed, err := s.MarkVerified(ctx, "A@b.com")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, u.Verified)
	require.NotNil(t, u.VerifiedAt)
	assert.Equal(t, fixed, *u.VerifiedAt)

	_, changed, err = s.MarkVerified(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var ids []ulid.ULID
	for i := range 3 {
		u, err := s.Create(ctx, fmt.Sprintf("u%d@b.com", i), "U", "h")
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	require.NoError(t, s.Delete(ctx, ids[1]))
	_, err = s.GetByEmail(ctx, "u1@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 2, s.Len())

	// The email is free again.
	_, err = s.Create(ctx, "u1@b.com", "U", "h")
	assert.NoError(t, err)
}

func TestStore_ConcurrentCreateSameEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, "race@b.com", "R", "h")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrUserExists)
		}
	}
	assert.Equal(t, 1, created)
}

func TestStore_DeleteUnverifiedBefore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	_, err := s.Create(ctx, "stale@example.com", "Stale", "h")
	require.NoError(t, err)
	_, err = s.Create(ctx, "verified@example.com", "Verified", "h")
	require.NoError(t, err)
	_, _, err = s.MarkVerified(ctx, "verified@example.com")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, err = s.Create(ctx, "fresh@example.com", "Fresh", "h")
	require.NoError(t, err)

	n, err := s.DeleteUnverifiedBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, s.Len())

	_, err = s.GetByEmail(ctx, "stale@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The address is free again.
	_, err = s.Create(ctx, "stale@example.com", "Stale", "h")
	assert.NoError(t, err)
}
