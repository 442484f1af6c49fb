package patient

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/pkg/httputil"
)

const (
	dashboardPath    = "/patient/dashboard"
	appointmentsPath = "/patient/appointments"

	msgBookingFields   = "Please select a date and time slot."
	msgDoctorNotFound  = "Doctor not found."
	msgPatientNotFound = "Failed to load patient details."
)

var errPatientUnavailable = errors.New("patient profile unavailable")

type Handler struct {
	*handler.Handler
}

func NewHandler(base *handler.Handler) *Handler {
	return &Handler{Handler: base}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patient := r.Group("/patient")
	{
		browsing := patient.Group("", middleware.RequireRole(model.RolePatient, model.RoleLoggedPatient))
		browsing.GET("/dashboard", h.Dashboard)
		browsing.GET("/doctors/cards", h.Cards)

		logged := patient.Group("", middleware.RequireRole(model.RoleLoggedPatient))
		logged.GET("/book/:doctorID", h.BookingForm)
		logged.POST("/appointments", h.Book)
		logged.GET("/appointments", h.Appointments)
		logged.GET("/appointments/rows", h.AppointmentRows)
	}
}

// DashboardContent is the patient doctor-list page model.
type DashboardContent struct {
	FragmentURL string
	Filter      model.DoctorFilter
	List        render.DoctorList
}

func (h *Handler) Dashboard(c *gin.Context) {
	var filter model.DoctorFilter
	_ = c.ShouldBindQuery(&filter)

	h.Page(c, http.StatusOK, "patient_dashboard", "Patient Dashboard", DashboardContent{
		FragmentURL: "/patient/doctors/cards",
		Filter:      filter,
		List:        h.doctors(c.Request.Context(), filter, handler.Session(c).Role()),
	})
}

func (h *Handler) Cards(c *gin.Context) {
	var filter model.DoctorFilter
	_ = c.ShouldBindQuery(&filter)
	role := handler.Session(c).Role()

	h.Filtered(c, "patient", "doctor_cards", func(ctx context.Context) interface{} {
		return h.doctors(ctx, filter, role)
	})
}

func (h *Handler) doctors(ctx context.Context, filter model.DoctorFilter, role model.Role) render.DoctorList {
	result := h.Backend.FilterDoctors(ctx, filter.Normalize())
	if result.Failed() {
		h.Log.Error(result.Err, "failed to load doctors")
	}
	return render.DoctorList{Result: result, Role: role}
}

// BookingForm renders the booking overlay for one doctor, prefilled with
// the logged-in patient's profile.
func (h *Handler) BookingForm(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("doctorID"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithFailure(c, http.StatusBadRequest, msgDoctorNotFound)
		return
	}
	ctx := c.Request.Context()

	doctors := h.Backend.GetDoctors(ctx)
	if doctors.Failed() {
		h.Log.Error(doctors.Err, "failed to load doctors for booking")
		httputil.RespondWithFailure(c, http.StatusBadGateway, "Error loading doctors. Please check the API status.")
		return
	}
	var doctor *model.Doctor
	for i := range doctors.Items {
		if doctors.Items[i].ID == id {
			doctor = &doctors.Items[i]
			break
		}
	}
	if doctor == nil {
		httputil.RespondWithFailure(c, http.StatusNotFound, msgDoctorNotFound)
		return
	}

	patient := h.Backend.GetPatientData(ctx, handler.Session(c).Token())
	if patient == nil {
		httputil.RespondWithFailure(c, http.StatusBadGateway, msgPatientNotFound)
		return
	}

	h.Fragment(c, http.StatusOK, "booking", render.Booking{
		Doctor:    *doctor,
		Patient:   *patient,
		Date:      h.Today(),
		CSRFField: csrf.TemplateField(c.Request),
	})
}

// Book submits the booking overlay.
func (h *Handler) Book(c *gin.Context) {
	var req model.Booking
	if err := c.ShouldBind(&req); err != nil {
		handler.SetFlash(c, render.ErrorFlash(msgBookingFields))
		handler.Redirect(c, dashboardPath)
		return
	}

	result := h.Backend.BookAppointment(c.Request.Context(), req, handler.Session(c).Token())
	if !result.Success {
		h.Log.Warn("failed to book appointment", "doctor_id", req.DoctorID, "message", result.Message)
		handler.SetFlash(c, render.ErrorFlash(result.Message))
		handler.Redirect(c, dashboardPath)
		return
	}
	handler.SetFlash(c, render.SuccessFlash(result.Message))
	handler.Redirect(c, appointmentsPath)
}

// AppointmentsContent is the patient appointment page model.
type AppointmentsContent struct {
	Filter       model.AppointmentFilter
	Appointments render.PatientAppointments
}

func (h *Handler) Appointments(c *gin.Context) {
	var filter model.AppointmentFilter
	_ = c.ShouldBindQuery(&filter)

	h.Page(c, http.StatusOK, "appointments", "My Appointments", AppointmentsContent{
		Filter:       filter,
		Appointments: h.appointments(c.Request.Context(), filter, handler.Session(c).Token()),
	})
}

func (h *Handler) AppointmentRows(c *gin.Context) {
	var filter model.AppointmentFilter
	_ = c.ShouldBindQuery(&filter)
	token := handler.Session(c).Token()

	h.Filtered(c, "appointments", "patient_appointment_rows", func(ctx context.Context) interface{} {
		return h.appointments(ctx, filter, token)
	})
}

// appointments lists the patient's own appointments; without criteria it
// goes through the profile id like the unfiltered page load.
func (h *Handler) appointments(ctx context.Context, filter model.AppointmentFilter, token string) render.PatientAppointments {
	var result model.ListResult[model.Appointment]
	if filter.IsEmpty() {
		patient := h.Backend.GetPatientData(ctx, token)
		if patient == nil {
			result = model.ListFailure[model.Appointment](errPatientUnavailable)
		} else {
			result = h.Backend.GetPatientAppointments(ctx, patient.ID, token, model.RoleLoggedPatient)
		}
	} else {
		result = h.Backend.FilterAppointments(ctx, filter.Normalize(), token)
	}
	if result.Failed() {
		h.Log.Error(result.Err, "failed to load appointments")
	}
	return render.PatientAppointments{Result: result}
}
