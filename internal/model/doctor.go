package model

import "strings"

// Doctor as returned by the clinic backend. The client never edits one in
// place; it is either saved whole or deleted.
type Doctor struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Specialty    string   `json:"specialty"`
	Email        string   `json:"email"`
	Mobile       string   `json:"mobile,omitempty"`
	Availability []string `json:"availability"`
}

// AvailabilityText joins the ordered slots for display.
func (d Doctor) AvailabilityText() string {
	if len(d.Availability) == 0 {
		return "Not specified"
	}
	return strings.Join(d.Availability, ", ")
}

// NewDoctor is the add-doctor form payload sent to POST /doctor.
type NewDoctor struct {
	Name         string   `json:"name" form:"name" binding:"required"`
	Specialty    string   `json:"specialty" form:"specialty" binding:"required"`
	Email        string   `json:"email" form:"email" binding:"required,email"`
	Password     string   `json:"password" form:"password" binding:"required"`
	Mobile       string   `json:"mobile" form:"mobile" binding:"required"`
	Availability []string `json:"availability" form:"availability" binding:"required,min=1,dive,timeslot"`
}

// Trim strips surrounding whitespace from every text field except the
// password, which is sent as typed.
func (d *NewDoctor) Trim() {
	d.Name = strings.TrimSpace(d.Name)
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.Email = strings.TrimSpace(d.Email)
	d.Mobile = strings.TrimSpace(d.Mobile)
}
