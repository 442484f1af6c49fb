package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// PatientSignup registers a patient. No token is involved.
func (c *Client) PatientSignup(ctx context.Context, signup model.Signup) model.WriteResult {
	resp, err := c.do(ctx, request{
		op:     "patient_signup",
		method: http.MethodPost,
		path:   []string{"patient", "signup"},
		body:   signup,
	})
	if err != nil {
		return model.Failed(writeFailure(err, "Sign up failed due to a network or server error."))
	}

	msg := serverMessage(resp.body)
	if msg == "" {
		msg = "Registration successful. Please log in."
	}
	return model.Succeeded(msg, nil)
}

// GetPatientData returns the logged-in patient's profile, or nil on any
// failure.
func (c *Client) GetPatientData(ctx context.Context, token string) *model.Patient {
	resp, err := c.do(ctx, request{
		op:     "get_patient",
		method: http.MethodGet,
		path:   []string{"patient", "profile"},
		token:  token,
	})
	if err != nil {
		return nil
	}

	var wrapped struct {
		Patient *model.Patient `json:"patient"`
	}
	if err := resp.decode(&wrapped); err == nil && wrapped.Patient != nil {
		return wrapped.Patient
	}

	var patient model.Patient
	if err := resp.decode(&patient); err != nil {
		c.log.Error(err, "unexpected patient payload")
		return nil
	}
	if patient.ID == 0 && patient.Email == "" {
		return nil
	}
	return &patient
}

// GetPatientAppointments lists a patient's appointments. Doctors read the
// same data through their own endpoint.
func (c *Client) GetPatientAppointments(ctx context.Context, patientID int64, token string, viewer model.Role) model.ListResult[model.Appointment] {
	path := []string{"patient", "appointments"}
	if viewer == model.RoleDoctor {
		path = []string{"doctor", "patient-appointments"}
	}
	return c.listAppointments(ctx, request{
		op:     "get_patient_appointments",
		method: http.MethodGet,
		path:   path,
		query:  url.Values{"patientId": {strconv.FormatInt(patientID, 10)}},
		token:  token,
	})
}

// FilterAppointments narrows the patient's appointments by condition and
// doctor or patient name.
func (c *Client) FilterAppointments(ctx context.Context, filter model.AppointmentFilter, token string) model.ListResult[model.Appointment] {
	f := filter.Normalize()
	return c.listAppointments(ctx, request{
		op:     "filter_appointments",
		method: http.MethodGet,
		path:   []string{"patient", "appointments", "filter"},
		query:  url.Values{"condition": {f.Condition}, "name": {f.Name}},
		token:  token,
	})
}

func (c *Client) listAppointments(ctx context.Context, req request) model.ListResult[model.Appointment] {
	resp, err := c.do(ctx, req)
	if err != nil {
		return model.ListFailure[model.Appointment](err)
	}

	var entries []appointmentEntry
	if err := decodeList(resp, "appointments", &entries); err != nil {
		c.log.Error(err, "unexpected appointment list payload", "operation", req.op)
		return model.ListFailure[model.Appointment](err)
	}
	return model.ListOf(toAppointments(entries))
}
