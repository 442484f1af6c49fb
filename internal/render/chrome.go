package render

import (
	"html/template"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// HeaderData drives the navigation links.
type HeaderData struct {
	Role      model.Role
	CSRFField template.HTML
}

// ShowPatientAuth reports whether the patient login/sign-up overlays belong
// on the page, i.e. the header offers Login and Sign Up.
func (h HeaderData) ShowPatientAuth() bool {
	switch h.Role {
	case model.RoleAdmin, model.RoleDoctor, model.RoleLoggedPatient:
		return false
	default:
		return true
	}
}

func Header(h HeaderData) (template.HTML, error) {
	return executeHTML("header", h)
}

// Footer renders the static footer with the given copyright year.
func Footer(year int) (template.HTML, error) {
	return executeHTML("footer", year)
}

// Booking is the overlay content for a logged-in patient booking a doctor.
type Booking struct {
	Doctor    model.Doctor
	Patient   model.Patient
	Date      string
	CSRFField template.HTML
}
