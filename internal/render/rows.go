package render

import (
	"fmt"
	"html/template"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// AppointmentRow renders one row of the doctor's schedule table.
func AppointmentRow(a model.Appointment) (template.HTML, error) {
	return executeHTML("appointment_row", a)
}

// Schedule is the doctor's table body for one date and optional name.
type Schedule struct {
	Result      model.ListResult[model.Appointment]
	Date        string
	PatientName string
}

func ScheduleRows(s Schedule) (template.HTML, error) {
	return executeHTML("schedule_rows", s)
}

func emptyScheduleMessage(date, name string) string {
	if name == "" {
		return fmt.Sprintf("No appointments found for %s.", date)
	}
	return fmt.Sprintf("No appointments found for %s matching %q.", date, name)
}

// PatientAppointments is the logged-in patient's own appointment table body.
type PatientAppointments struct {
	Result model.ListResult[model.Appointment]
}
