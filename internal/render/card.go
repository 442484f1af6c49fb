package render

import (
	"html/template"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// Action is the control shown at the bottom of a doctor card.
type Action string

const (
	ActionNone        Action = ""
	ActionDelete      Action = "delete"
	ActionLoginPrompt Action = "login"
	ActionBook        Action = "book"
)

// CardAction picks the card control for a role. Roles without one (doctor,
// anonymous) get no action element at all.
func CardAction(role model.Role) Action {
	switch role {
	case model.RoleAdmin:
		return ActionDelete
	case model.RolePatient:
		return ActionLoginPrompt
	case model.RoleLoggedPatient:
		return ActionBook
	default:
		return ActionNone
	}
}

type cardView struct {
	ID           int64
	Name         string
	Specialty    string
	Email        string
	Availability string
	Action       Action
}

func newCardView(d model.Doctor, role model.Role) cardView {
	return cardView{
		ID:           d.ID,
		Name:         orDefault(d.Name, "N/A"),
		Specialty:    orDefault(d.Specialty, "General Practice"),
		Email:        orDefault(d.Email, "N/A"),
		Availability: d.AvailabilityText(),
		Action:       CardAction(role),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DoctorCard renders one doctor card for the given viewer role.
func DoctorCard(d model.Doctor, role model.Role) (template.HTML, error) {
	return executeHTML("doctor_card", newCardView(d, role))
}

// DoctorList is the card grid content: cards, the empty notice or the load
// error.
type DoctorList struct {
	Result model.ListResult[model.Doctor]
	Role   model.Role
}

func DoctorCards(list DoctorList) (template.HTML, error) {
	return executeHTML("doctor_cards", list)
}
