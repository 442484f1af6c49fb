package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/repository"
)

func setupMock(t *testing.T) (sqlmock.Sqlmock, repository.SessionRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSessionRepository(NewBaseRepository(sqlx.NewDb(db, "postgres")), time.Hour)
	return mock, repo
}

func TestSessionRepository_Get(t *testing.T) {
	mock, repo := setupMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "token", "role", "created_at", "updated_at", "expires_at"}).
		AddRow("s1", "tok", "admin", now, now, now.Add(time.Hour))
	mock.ExpectQuery("SELECT id, token, role").WithArgs("s1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetMissing(t *testing.T) {
	mock, repo := setupMock(t)

	mock.ExpectQuery("SELECT id, token, role").WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Save(t *testing.T) {
	mock, repo := setupMock(t)
	now := time.Now()
	s := &model.Session{ID: "s1", Token: "tok", Role: model.RoleDoctor, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO portal_sessions").
		WithArgs("s1", "tok", "doctor", now, now, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM portal_sessions WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), s))
	assert.True(t, s.ExpiresAt.After(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_SaveRollsBack(t *testing.T) {
	mock, repo := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO portal_sessions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), &model.Session{ID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save session")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Delete(t *testing.T) {
	mock, repo := setupMock(t)

	mock.ExpectExec("DELETE FROM portal_sessions WHERE id").WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
