package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/session"
	"github.com/jwalitptl/clinic-portal/pkg/httputil"
)

const ContextSession = "session"

// SessionExpiredMessage is sent to fragment and JSON callers whose session
// failed the guard.
const SessionExpiredMessage = "Session expired. Please log in again."

type AuthMiddleware struct {
	manager *session.Manager
}

func NewAuthMiddleware(manager *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{manager: manager}
}

// sessionWriter persists the session right before the response header goes
// out, so redirects and rendered pages both carry the current cookie.
type sessionWriter struct {
	gin.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (w *sessionWriter) flush() {
	if !w.committed {
		w.committed = true
		w.commit(w.ResponseWriter)
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

// LoadSession attaches the request's session to the context and saves it
// back when the handler changed it.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.manager.Load(c.Request)
		if err != nil {
			log.Error().Err(err).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("Session store unavailable, continuing with a fresh session")
		}
		c.Set(ContextSession, s)

		sw := &sessionWriter{
			ResponseWriter: c.Writer,
			commit: func(w http.ResponseWriter) {
				if err := m.manager.Save(c.Request.Context(), w, s); err != nil {
					log.Error().Err(err).
						Str("request_id", c.GetString(ContextRequestID)).
						Msg("Failed to save session")
				}
			},
		}
		c.Writer = sw

		c.Next()

		sw.flush()
	}
}

// Guard enforces the token requirement: a role that needs a token but has
// none (or an expired one) is cleared and sent home.
func (m *AuthMiddleware) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s != nil && !s.Valid() {
			log.Warn().
				Str("request_id", c.GetString(ContextRequestID)).
				Str("role", s.Role().String()).
				Msg("Session expired or invalid login, redirecting to home")
			s.Clear()
			abortToHome(c)
			return
		}
		c.Next()
	}
}

// RequireRole lets through only sessions holding one of roles with a token.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil || !allowed[s.Role()] || (s.Role().RequiresToken() && s.Token() == "") {
			abortToHome(c)
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by LoadSession, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func abortToHome(c *gin.Context) {
	if httputil.WantsJSON(c) {
		httputil.RespondWithFailure(c, http.StatusUnauthorized, SessionExpiredMessage)
		c.Abort()
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
	c.Abort()
}
