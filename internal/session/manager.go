package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-portal/internal/repository"
	"github.com/jwalitptl/clinic-portal/pkg/logger"
)

const DefaultCookieName = "portal_session"

type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	MaxAge   time.Duration
	SameSite http.SameSite
}

// Manager ties the portal_session cookie to a SessionRepository.
type Manager struct {
	repo   repository.SessionRepository
	cookie CookieConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewManager(repo repository.SessionRepository, cookie CookieConfig, log *logger.Logger) *Manager {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * time.Hour
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{repo: repo, cookie: cookie, log: log.With("session"), now: time.Now}
}

func (m *Manager) CookieName() string { return m.cookie.Name }

// Secure reports whether the cookie is marked secure, i.e. served over TLS.
func (m *Manager) Secure() bool { return m.cookie.Secure }

// Load returns the request's session. A missing cookie or an unknown id
// yields a fresh anonymous session; store failures are returned so the
// caller can decide, but the fresh session is still usable.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return m.fresh(), nil
	}

	rec, err := m.repo.Get(r.Context(), c.Value)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return m.fresh(), nil
	}
	if err != nil {
		return m.fresh(), fmt.Errorf("failed to load session: %w", err)
	}
	return fromRecord(rec, m.now), nil
}

// Save persists a dirty session and keeps the cookie in step. An empty
// session is deleted from the store and its cookie expired.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.Dirty() {
		return nil
	}

	if s.Empty() {
		if !s.IsNew() {
			if err := m.repo.Delete(ctx, s.ID()); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		m.expireCookie(w)
		s.dirty = false
		return nil
	}

	rec := s.Record()
	if err := m.repo.Save(ctx, &rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.rec = rec
	s.dirty = false
	s.isNew = false
	m.setCookie(w, s.ID())

	m.log.Debug("session saved", "role", string(rec.Role))
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *Manager) fresh() *Session {
	return newSession(uuid.NewString(), m.now)
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    id,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   int(m.cookie.MaxAge.Seconds()),
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   -1,
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
}
