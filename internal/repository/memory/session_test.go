package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/repository"
)

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(Config{TTL: time.Minute, CleanupInterval: time.Minute})

	s := &model.Session{ID: "abc", Token: "tok", Role: model.RoleAdmin}
	require.NoError(t, repo.Save(ctx, s))
	assert.False(t, s.ExpiresAt.IsZero())

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, model.RoleAdmin, got.Role)

	// Callers get a copy; mutating it does not touch the stored entry.
	got.Token = "changed"
	again, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Token)

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(Config{TTL: 20 * time.Millisecond, CleanupInterval: time.Minute})

	require.NoError(t, repo.Save(ctx, &model.Session{ID: "short", Role: model.RolePatient}))
	time.Sleep(40 * time.Millisecond)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
