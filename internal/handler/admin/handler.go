package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/pkg/httputil"
)

const (
	dashboardPath = "/admin/dashboard"
	cardsPath     = "/admin/doctors/cards"

	msgDoctorAdded     = "Doctor added successfully!"
	msgMissingFields   = "Please fill in all required fields and select availability."
	msgInvalidDoctorID = "Invalid doctor ID."
)

type Handler struct {
	*handler.Handler
}

func NewHandler(base *handler.Handler) *Handler {
	return &Handler{Handler: base}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard)
		admin.GET("/doctors/cards", h.Cards)
		admin.POST("/doctors", h.AddDoctor)
		admin.DELETE("/doctors/:id", h.DeleteDoctor)
	}
}

// DashboardContent is the admin page model.
type DashboardContent struct {
	FragmentURL string
	Filter      model.DoctorFilter
	List        render.DoctorList
}

func (h *Handler) Dashboard(c *gin.Context) {
	var filter model.DoctorFilter
	_ = c.ShouldBindQuery(&filter)

	h.Page(c, http.StatusOK, "admin_dashboard", "Admin Dashboard", DashboardContent{
		FragmentURL: cardsPath,
		Filter:      filter,
		List:        h.doctors(c.Request.Context(), filter),
	})
}

// Cards answers the filter bar with the card grid only.
func (h *Handler) Cards(c *gin.Context) {
	var filter model.DoctorFilter
	_ = c.ShouldBindQuery(&filter)

	h.Filtered(c, "admin", "doctor_cards", func(ctx context.Context) interface{} {
		return h.doctors(ctx, filter)
	})
}

func (h *Handler) doctors(ctx context.Context, filter model.DoctorFilter) render.DoctorList {
	result := h.Backend.FilterDoctors(ctx, filter.Normalize())
	if result.Failed() {
		h.Log.Error(result.Err, "failed to load doctors")
	}
	return render.DoctorList{Result: result, Role: model.RoleAdmin}
}

// AddDoctor validates the add-doctor form before anything reaches the
// backend. The dashboard is reloaded either way.
func (h *Handler) AddDoctor(c *gin.Context) {
	var req model.NewDoctor
	if err := c.ShouldBind(&req); err != nil {
		h.Log.Debug("add doctor form rejected", "fields", middleware.DescribeValidation(err, middleware.DefaultValidationConfig()))
		handler.SetFlash(c, render.ErrorFlash(msgMissingFields))
		handler.Redirect(c, dashboardPath)
		return
	}
	req.Trim()

	result := h.Backend.SaveDoctor(c.Request.Context(), req, handler.Session(c).Token())
	if !result.Success {
		h.Log.Warn("failed to add doctor", "message", result.Message)
		handler.SetFlash(c, render.ErrorFlash("Failed to add doctor: "+result.Message))
		handler.Redirect(c, dashboardPath)
		return
	}

	handler.SetFlash(c, render.SuccessFlash(msgDoctorAdded))
	handler.Redirect(c, dashboardPath)
}

// DeleteDoctor answers with the write result as JSON; the page removes the
// card itself and does not fetch the list again.
func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithFailure(c, http.StatusBadRequest, msgInvalidDoctorID)
		return
	}

	result := h.Backend.DeleteDoctor(c.Request.Context(), id, handler.Session(c).Token())
	if !result.Success {
		h.Log.Warn("failed to delete doctor", "doctor_id", id, "message", result.Message)
		httputil.RespondWithFailure(c, http.StatusBadGateway, result.Message)
		return
	}
	httputil.RespondWithSuccess(c, result.Message, nil)
}
