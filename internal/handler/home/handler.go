package home

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/model"
)

type Handler struct {
	*handler.Handler
}

func NewHandler(base *handler.Handler) *Handler {
	return &Handler{Handler: base}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.POST("/role/patient", h.ChoosePatient)
}

// Index is the role selection page. Landing here always starts over.
func (h *Handler) Index(c *gin.Context) {
	handler.Session(c).Clear()
	h.Page(c, http.StatusOK, "home", "Select Your Role", nil)
}

// ChoosePatient enters the patient side without logging in.
func (h *Handler) ChoosePatient(c *gin.Context) {
	handler.Session(c).Set(model.RolePatient, "")
	handler.Redirect(c, "/patient/dashboard")
}
