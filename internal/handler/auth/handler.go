package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-portal/internal/client"
	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/render"
	apperrors "github.com/jwalitptl/clinic-portal/pkg/errors"
)

const (
	msgMissingUsername = "Please enter both username and password."
	msgMissingEmail    = "Please enter both email and password."
	msgMissingSignup   = "Please fill in all required fields for signup."
	msgTokenMissing    = "Login failed: Authentication token missing."
	msgLoginFallback   = "Invalid credentials or login failed."
)

type Handler struct {
	*handler.Handler
}

func NewHandler(base *handler.Handler) *Handler {
	return &Handler{Handler: base}
}

// RegisterRoutes mounts the login and logout posts. limit guards the
// credential-bearing posts and may be nil.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limit gin.HandlerFunc) {
	guarded := []gin.HandlerFunc{}
	if limit != nil {
		guarded = append(guarded, limit)
	}
	r.POST("/admin/login", append(guarded, h.AdminLogin)...)
	r.POST("/doctor/login", append(guarded, h.DoctorLogin)...)
	r.POST("/patient/login", append(guarded, h.PatientLogin)...)
	r.POST("/patient/signup", append(guarded, h.PatientSignup)...)
	r.POST("/logout", h.Logout)
	r.POST("/patient/logout", h.PatientLogout)
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req model.AdminCredentials
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, "/", msgMissingUsername)
		return
	}

	token, err := h.Backend.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Log.Warn("admin login failed", "error", err.Error())
		h.fail(c, "/", LoginFailure(err))
		return
	}

	handler.Session(c).Set(model.RoleAdmin, token)
	handler.Redirect(c, "/admin/dashboard")
}

func (h *Handler) DoctorLogin(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, "/", msgMissingEmail)
		return
	}

	token, err := h.Backend.DoctorLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Log.Warn("doctor login failed", "error", err.Error())
		h.fail(c, "/", LoginFailure(err))
		return
	}

	handler.Session(c).Set(model.RoleDoctor, token)
	handler.Redirect(c, "/doctor/dashboard")
}

// PatientLogin upgrades a browsing patient. The form lives on the patient
// dashboard, so failures are reported there.
func (h *Handler) PatientLogin(c *gin.Context) {
	s := handler.Session(c)
	var req model.Credentials
	if err := c.ShouldBind(&req); err != nil {
		h.failPatient(c, msgMissingEmail)
		return
	}

	token, err := h.Backend.PatientLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Log.Warn("patient login failed", "error", err.Error())
		h.failPatient(c, LoginFailure(err))
		return
	}

	s.Set(model.RoleLoggedPatient, token)
	handler.Redirect(c, "/patient/dashboard")
}

// PatientSignup registers a patient. The visitor still has to log in
// afterwards; the session is only moved to the patient side.
func (h *Handler) PatientSignup(c *gin.Context) {
	var req model.Signup
	if err := c.ShouldBind(&req); err != nil {
		h.failPatient(c, msgMissingSignup)
		return
	}
	req.Trim()

	result := h.Backend.PatientSignup(c.Request.Context(), req)
	if !result.Success {
		h.failPatient(c, result.Message)
		return
	}
	handler.SetFlash(c, render.SuccessFlash(result.Message))
	ensurePatientSide(c)
	handler.Redirect(c, "/patient/dashboard")
}

// Logout forgets the session entirely.
func (h *Handler) Logout(c *gin.Context) {
	handler.Session(c).Clear()
	handler.Redirect(c, "/")
}

// PatientLogout drops the token but keeps the visitor browsing as a patient.
func (h *Handler) PatientLogout(c *gin.Context) {
	handler.Session(c).DowngradeToPatient()
	handler.Redirect(c, "/patient/dashboard")
}

// LoginFailure formats a login error for display.
func LoginFailure(err error) string {
	if errors.Is(err, client.ErrTokenMissing) {
		return msgTokenMissing
	}
	return "Login Failed: " + apperrors.Message(err, msgLoginFallback)
}

func (h *Handler) fail(c *gin.Context, location, message string) {
	handler.SetFlash(c, render.ErrorFlash(message))
	handler.Redirect(c, location)
}

func (h *Handler) failPatient(c *gin.Context, message string) {
	ensurePatientSide(c)
	h.fail(c, "/patient/dashboard", message)
}

// ensurePatientSide keeps an anonymous visitor from bouncing off the
// patient dashboard after a failed patient form.
func ensurePatientSide(c *gin.Context) {
	s := handler.Session(c)
	if s.Role() == model.RoleAnonymous {
		s.Set(model.RolePatient, "")
	}
}
