package doctor

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/render"
)

type Handler struct {
	*handler.Handler
}

func NewHandler(base *handler.Handler) *Handler {
	return &Handler{Handler: base}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctor := r.Group("/doctor", middleware.RequireRole(model.RoleDoctor))
	{
		doctor.GET("/dashboard", h.Dashboard)
		doctor.GET("/appointments/rows", h.Rows)
	}
}

// DashboardContent is the doctor page model.
type DashboardContent struct {
	Filter   model.ScheduleFilter
	Today    string
	Schedule render.Schedule
}

// Dashboard shows the schedule for ?date= (today by default), optionally
// narrowed by ?name=.
func (h *Handler) Dashboard(c *gin.Context) {
	filter := h.filter(c)
	h.Page(c, http.StatusOK, "doctor_dashboard", "Doctor Dashboard", DashboardContent{
		Filter:   filter,
		Today:    h.Today(),
		Schedule: h.schedule(c.Request.Context(), filter, handler.Session(c).Token()),
	})
}

func (h *Handler) Rows(c *gin.Context) {
	filter := h.filter(c)
	token := handler.Session(c).Token()
	h.Filtered(c, "doctor", "schedule_rows", func(ctx context.Context) interface{} {
		return h.schedule(ctx, filter, token)
	})
}

// filter reads the query; a missing or malformed date means today.
func (h *Handler) filter(c *gin.Context) model.ScheduleFilter {
	var f model.ScheduleFilter
	_ = c.ShouldBindQuery(&f)
	f.PatientName = strings.TrimSpace(f.PatientName)
	if _, err := time.Parse(model.DateLayout, f.Date); err != nil {
		f.Date = h.Today()
	}
	return f
}

func (h *Handler) schedule(ctx context.Context, filter model.ScheduleFilter, token string) render.Schedule {
	result := h.Backend.GetDoctorSchedule(ctx, filter, token)
	if result.Failed() {
		h.Log.Error(result.Err, "failed to load schedule", "date", filter.Date)
	}
	return render.Schedule{Result: result, Date: filter.Date, PatientName: filter.PatientName}
}
