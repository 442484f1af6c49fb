package model

import "strings"

// AppointmentStatus as stored by the backend.
type AppointmentStatus int

const (
	AppointmentScheduled AppointmentStatus = 0
	AppointmentCompleted AppointmentStatus = 1
	AppointmentCancelled AppointmentStatus = 2
)

func (s AppointmentStatus) String() string {
	switch s {
	case AppointmentScheduled:
		return "Scheduled"
	case AppointmentCompleted:
		return "Completed"
	case AppointmentCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Appointment is a read-only projection. The doctor's schedule uses the
// patient fields; the patient's own list also fills in the doctor fields.
type Appointment struct {
	ID              int64             `json:"id,omitempty"`
	PatientID       int64             `json:"patientId"`
	PatientName     string            `json:"patientName"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Prescription    string            `json:"prescription"`
	AppointmentDate string            `json:"appointmentDate"`
	DoctorID        int64             `json:"doctorId,omitempty"`
	DoctorName      string            `json:"doctorName,omitempty"`
	AppointmentTime string            `json:"appointmentTime,omitempty"`
	Status          AppointmentStatus `json:"status,omitempty"`
}

// Booking is what a logged-in patient submits from the booking overlay: a
// date and one of the doctor's availability slots.
type Booking struct {
	DoctorID  int64  `form:"doctor_id" binding:"required"`
	PatientID int64  `form:"patient_id" binding:"required"`
	Date      string `form:"date" binding:"required,datetime=2006-01-02"`
	Slot      string `form:"slot" binding:"required,timeslot"`
}

// AppointmentTime is the local date-time the backend expects, taken from the
// start of the slot ("09:00-10:00" starts at 09:00).
func (b Booking) AppointmentTime() string {
	start := strings.TrimSpace(strings.SplitN(b.Slot, "-", 2)[0])
	if strings.Count(start, ":") == 1 {
		start += ":00"
	}
	return b.Date + "T" + start
}

// bookingRef is the {id} shape the backend expects for nested entities.
type bookingRef struct {
	ID int64 `json:"id"`
}

// BookingPayload is the JSON body for POST /appointments/{token}.
type BookingPayload struct {
	Doctor          bookingRef        `json:"doctor"`
	Patient         bookingRef        `json:"patient"`
	AppointmentTime string            `json:"appointmentTime"`
	Status          AppointmentStatus `json:"status"`
}

// Payload converts the form into the backend's body.
func (b Booking) Payload() BookingPayload {
	return BookingPayload{
		Doctor:          bookingRef{ID: b.DoctorID},
		Patient:         bookingRef{ID: b.PatientID},
		AppointmentTime: b.AppointmentTime(),
		Status:          AppointmentScheduled,
	}
}
