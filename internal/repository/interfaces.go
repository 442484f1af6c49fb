package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// ErrSessionNotFound is returned by Get when the id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

type (
	// SessionRepository persists portal sessions. Save is an upsert and
	// refreshes the expiry.
	SessionRepository interface {
		Get(ctx context.Context, id string) (*model.Session, error)
		Save(ctx context.Context, session *model.Session) error
		Delete(ctx context.Context, id string) error
		Ping(ctx context.Context) error
	}
)
