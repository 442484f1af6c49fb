package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS portal_sessions (
	id         TEXT PRIMARY KEY,
	token      TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

type sessionRepository struct {
	BaseRepository
	ttl time.Duration
	now func() time.Time
}

func NewSessionRepository(base BaseRepository, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionRepository{BaseRepository: base, ttl: ttl, now: time.Now}
}

// EnsureSchema creates the sessions table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	query := `
		SELECT id, token, role, created_at, updated_at, expires_at
		FROM portal_sessions
		WHERE id = $1 AND expires_at > NOW()
	`

	var session model.Session
	err := r.GetDB().GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Save upserts the session and drops expired rows in the same transaction.
func (r *sessionRepository) Save(ctx context.Context, session *model.Session) error {
	session.ExpiresAt = r.now().Add(r.ttl)
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO portal_sessions (id, token, role, created_at, updated_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET token = $2, role = $3, updated_at = $5, expires_at = $6
		`
		if _, err := tx.ExecContext(ctx, query,
			session.ID, session.Token, string(session.Role),
			session.CreatedAt, session.UpdatedAt, session.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM portal_sessions WHERE expires_at <= NOW()`); err != nil {
			return fmt.Errorf("failed to purge expired sessions: %w", err)
		}
		return nil
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetDB().ExecContext(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return r.GetDB().PingContext(ctx)
}
