// Package handler holds what every dashboard controller shares: the backend,
// the page renderer, flash notices and the filter sequencer.
package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/internal/session"
	"github.com/jwalitptl/clinic-portal/pkg/logger"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

// Backend is the part of the clinic API client the controllers call.
type Backend interface {
	GetDoctors(ctx context.Context) model.ListResult[model.Doctor]
	FilterDoctors(ctx context.Context, filter model.DoctorFilter) model.ListResult[model.Doctor]
	SaveDoctor(ctx context.Context, doctor model.NewDoctor, token string) model.WriteResult
	DeleteDoctor(ctx context.Context, id int64, token string) model.WriteResult

	AdminLogin(ctx context.Context, username, password string) (string, error)
	DoctorLogin(ctx context.Context, email, password string) (string, error)
	PatientLogin(ctx context.Context, email, password string) (string, error)

	PatientSignup(ctx context.Context, signup model.Signup) model.WriteResult
	GetPatientData(ctx context.Context, token string) *model.Patient
	GetPatientAppointments(ctx context.Context, patientID int64, token string, viewer model.Role) model.ListResult[model.Appointment]
	FilterAppointments(ctx context.Context, filter model.AppointmentFilter, token string) model.ListResult[model.Appointment]

	GetDoctorSchedule(ctx context.Context, filter model.ScheduleFilter, token string) model.ListResult[model.Appointment]
	BookAppointment(ctx context.Context, booking model.Booking, token string) model.WriteResult
}

// Pinger reports whether a dependency is usable; the session manager is one.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for all handlers
type Handler struct {
	Backend   Backend
	Renderer  *render.Renderer
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Sequencer *Sequencer
	Store     Pinger

	now func() time.Time
}

func NewHandler(backend Backend, renderer *render.Renderer, store Pinger, log *logger.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Backend:   backend,
		Renderer:  renderer,
		Log:       log,
		Metrics:   m,
		Sequencer: NewSequencer(),
		Store:     store,
		now:       time.Now,
	}
}

// Now is the clock used for "today" defaults.
func (h *Handler) Now() time.Time { return h.now() }

// SetClock replaces the clock, for tests.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

// Session returns the request's session. The session middleware always
// attaches one; a bare anonymous session stands in otherwise.
func Session(c *gin.Context) *session.Session {
	if s := middleware.CurrentSession(c); s != nil {
		return s
	}
	return session.Anonymous()
}

// Page renders a full page for the current session's role.
func (h *Handler) Page(c *gin.Context, status int, name, title string, content interface{}) {
	s := Session(c)
	field := csrf.TemplateField(c.Request)
	data := render.PageData{
		Title:     title,
		Header:    render.HeaderData{Role: s.Role(), CSRFField: field},
		Year:      h.now().Year(),
		CSRFToken: csrf.Token(c.Request),
		CSRFField: field,
		Flash:     TakeFlash(c),
		Content:   content,
	}

	var buf bytes.Buffer
	if err := h.Renderer.Page(&buf, name, data); err != nil {
		h.Log.Error(err, "failed to render page", "page", name)
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Fragment renders one partial, as answered to the filter bars.
func (h *Handler) Fragment(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.Renderer.Fragment(&buf, name, data); err != nil {
		h.Log.Error(err, "failed to render fragment", "fragment", name)
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Redirect answers a form post with 303 so a reload does not resubmit it.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Today is the date picker value for now.
func (h *Handler) Today() string {
	return h.now().Format(model.DateLayout)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   h.now(),
	})
}

// ReadinessCheck pings the session store. The backend is not pinged; its
// outages are rendered inline and tracked by the circuit breaker.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			h.Log.Error(err, "session store not ready")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "session store unavailable",
				"time":   h.now(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   h.now(),
	})
}
