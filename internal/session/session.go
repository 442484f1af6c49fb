package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// Session is the per-request view of a stored (token, role) pair. Reads
// within a request always see the last write made in that request.
type Session struct {
	rec   model.Session
	isNew bool
	dirty bool
	now   func() time.Time
}

func newSession(id string, now func() time.Time) *Session {
	t := now()
	return &Session{
		rec:   model.Session{ID: id, CreatedAt: t, UpdatedAt: t},
		isNew: true,
		now:   now,
	}
}

// Anonymous returns a throwaway session that is never persisted.
func Anonymous() *Session {
	return newSession("", time.Now)
}

func fromRecord(rec *model.Session, now func() time.Time) *Session {
	return &Session{rec: *rec, now: now}
}

func (s *Session) ID() string       { return s.rec.ID }
func (s *Session) Token() string    { return s.rec.Token }
func (s *Session) Role() model.Role { return s.rec.Role }
func (s *Session) IsNew() bool      { return s.isNew }
func (s *Session) Dirty() bool      { return s.dirty }

// Record returns a copy of the underlying stored record.
func (s *Session) Record() model.Session { return s.rec }

// Set replaces both fields at once, as every login does.
func (s *Session) Set(role model.Role, token string) {
	s.rec.Role = role
	s.rec.Token = token
	s.touch()
}

// Clear removes both the token and the role.
func (s *Session) Clear() {
	s.rec.Role = model.RoleAnonymous
	s.rec.Token = ""
	s.touch()
}

// DowngradeToPatient is the patient logout: the token goes, the visitor
// stays on the patient side as a browsing patient.
func (s *Session) DowngradeToPatient() {
	s.rec.Role = model.RolePatient
	s.rec.Token = ""
	s.touch()
}

// Empty reports a session with neither role nor token.
func (s *Session) Empty() bool {
	return s.rec.Role == model.RoleAnonymous && s.rec.Token == ""
}

// Valid reports whether the role's token requirement holds. A JWT whose exp
// claim lies in the past counts as missing.
func (s *Session) Valid() bool {
	if !s.rec.Role.RequiresToken() {
		return true
	}
	if s.rec.Token == "" {
		return false
	}
	return !TokenExpired(s.rec.Token, s.now())
}

func (s *Session) touch() {
	s.rec.UpdatedAt = s.now()
	s.dirty = true
}

// TokenExpired inspects the exp claim of a JWT without verifying its
// signature; the portal holds no key and only uses the claim to avoid
// sending a dead token. Opaque tokens and JWTs without exp never expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
