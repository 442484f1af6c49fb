package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// appointmentEntry accepts both the flat projection and the backend entity
// with nested doctor and patient objects.
type appointmentEntry struct {
	model.Appointment
	Doctor *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"doctor"`
	Patient *struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"patient"`
}

func toAppointments(entries []appointmentEntry) []model.Appointment {
	out := make([]model.Appointment, 0, len(entries))
	for _, e := range entries {
		a := e.Appointment
		if p := e.Patient; p != nil {
			a.PatientID = firstInt(a.PatientID, p.ID)
			a.PatientName = firstString(a.PatientName, p.Name)
			a.Email = firstString(a.Email, p.Email)
			a.Phone = firstString(a.Phone, p.Phone)
		}
		if d := e.Doctor; d != nil {
			a.DoctorID = firstInt(a.DoctorID, d.ID)
			a.DoctorName = firstString(a.DoctorName, d.Name)
		}
		if a.AppointmentDate == "" && len(a.AppointmentTime) >= len(model.DateLayout) {
			a.AppointmentDate = a.AppointmentTime[:len(model.DateLayout)]
		}
		out = append(out, a)
	}
	return out
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstInt(a, b int64) int64 {
	if a != 0 {
		return a
	}
	return b
}

// GetDoctorSchedule lists the logged-in doctor's appointments on one date,
// optionally narrowed to a patient name. The backend takes the literal
// "null" when no name is given.
func (c *Client) GetDoctorSchedule(ctx context.Context, filter model.ScheduleFilter, token string) model.ListResult[model.Appointment] {
	name := strings.TrimSpace(filter.PatientName)
	if name == "" {
		name = "null"
	}
	return c.listAppointments(ctx, request{
		op:     "get_doctor_schedule",
		method: http.MethodGet,
		path:   []string{"appointments", filter.Date, name, token},
		token:  token,
	})
}

// BookAppointment books a slot for the logged-in patient.
func (c *Client) BookAppointment(ctx context.Context, booking model.Booking, token string) model.WriteResult {
	resp, err := c.do(ctx, request{
		op:     "book_appointment",
		method: http.MethodPost,
		path:   []string{"appointments", token},
		body:   booking.Payload(),
		token:  token,
	})
	if err != nil {
		return model.Failed(writeFailure(err, "Booking failed due to a network or server error."))
	}

	msg := serverMessage(resp.body)
	if msg == "" {
		msg = "Appointment booked successfully"
	}
	return model.Succeeded(msg, nil)
}
