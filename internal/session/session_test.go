package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "doctor@example.com",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func TestSession_Clear(t *testing.T) {
	s := newSession("id", time.Now)
	s.Set(model.RoleAdmin, "tok")
	s.Clear()

	assert.Equal(t, "", s.Token())
	assert.Equal(t, model.RoleAnonymous, s.Role())
	assert.True(t, s.Empty())
	assert.True(t, s.Dirty())
}

func TestSession_DowngradeToPatient(t *testing.T) {
	s := newSession("id", time.Now)
	s.Set(model.RoleLoggedPatient, "tok")
	s.DowngradeToPatient()

	assert.Equal(t, "", s.Token())
	assert.Equal(t, model.RolePatient, s.Role())
	assert.True(t, s.Valid())
}

func TestSession_ReadsSeeLastWrite(t *testing.T) {
	s := newSession("id", time.Now)
	s.Set(model.RoleDoctor, "a")
	s.Set(model.RoleDoctor, "b")
	assert.Equal(t, "b", s.Token())
}

func TestSession_Valid(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name  string
		role  model.Role
		token string
		want  bool
	}{
		{"anonymous", model.RoleAnonymous, "", true},
		{"browsing patient", model.RolePatient, "", true},
		{"admin without token", model.RoleAdmin, "", false},
		{"logged patient without token", model.RoleLoggedPatient, "", false},
		{"doctor with opaque token", model.RoleDoctor, "opaque-token", true},
		{"doctor with live jwt", model.RoleDoctor, signedToken(t, now.Add(time.Hour)), true},
		{"admin with expired jwt", model.RoleAdmin, signedToken(t, now.Add(-time.Minute)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("id", clock)
			s.Set(tt.role, tt.token)
			assert.Equal(t, tt.want, s.Valid())
		})
	}
}

func TestTokenExpired_NoExpClaim(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	assert.False(t, TokenExpired(s, time.Now()))
}
