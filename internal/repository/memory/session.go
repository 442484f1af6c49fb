package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/repository"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type sessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionRepository keeps sessions in process memory. Entries vanish on
// restart, which is fine for a single instance.
func NewSessionRepository(cfg Config) repository.SessionRepository {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &sessionRepository{
		cache: cache.New(cfg.TTL, cfg.CleanupInterval),
		ttl:   cfg.TTL,
		now:   time.Now,
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	v, found := r.cache.Get(id)
	if !found {
		return nil, repository.ErrSessionNotFound
	}
	s := v.(model.Session)
	return &s, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *model.Session) error {
	session.ExpiresAt = r.now().Add(r.ttl)
	r.cache.Set(session.ID, *session, r.ttl)
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
