package render

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

var sampleDoctor = model.Doctor{
	ID:           7,
	Name:         "Dr. Alice",
	Specialty:    "Cardiology",
	Email:        "alice@clinic.test",
	Availability: []string{"09:00-10:00", "10:00-11:00"},
}

func TestCardAction(t *testing.T) {
	assert.Equal(t, ActionDelete, CardAction(model.RoleAdmin))
	assert.Equal(t, ActionLoginPrompt, CardAction(model.RolePatient))
	assert.Equal(t, ActionBook, CardAction(model.RoleLoggedPatient))
	assert.Equal(t, ActionNone, CardAction(model.RoleDoctor))
	assert.Equal(t, ActionNone, CardAction(model.RoleAnonymous))
	assert.Equal(t, ActionNone, CardAction(model.Role("superuser")))
}

func TestDoctorCard_Fields(t *testing.T) {
	html, err := DoctorCard(sampleDoctor, model.RoleAdmin)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `data-doctor-id="7"`)
	assert.Contains(t, out, "Dr. Alice")
	assert.Contains(t, out, "Cardiology")
	assert.Contains(t, out, "alice@clinic.test")
	assert.Contains(t, out, "09:00-10:00, 10:00-11:00")
	assert.Contains(t, out, "Delete Doctor")
	assert.Contains(t, out, `data-delete-url="/admin/doctors/7"`)
}

func TestDoctorCard_Defaults(t *testing.T) {
	html, err := DoctorCard(model.Doctor{ID: 1}, model.RolePatient)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "General Practice")
	assert.Contains(t, out, "Not specified")
	assert.Contains(t, out, "Book Now (Login Required)")
}

func TestDoctorCard_LoggedPatientBooks(t *testing.T) {
	html, err := DoctorCard(sampleDoctor, model.RoleLoggedPatient)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Book Appointment")
	assert.Contains(t, string(html), `data-booking-url="/patient/book/7"`)
}

func TestDoctorCard_NoActionForOtherRoles(t *testing.T) {
	for _, role := range []model.Role{model.RoleDoctor, model.RoleAnonymous, "nurse"} {
		html, err := DoctorCard(sampleDoctor, role)
		require.NoError(t, err)
		assert.NotContains(t, string(html), "card-actions", "role %q", role)
		assert.NotContains(t, string(html), "<button", "role %q", role)
	}
}

func TestDoctorCard_EscapesContent(t *testing.T) {
	html, err := DoctorCard(model.Doctor{Name: "<script>alert(1)</script>"}, model.RoleAdmin)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}

func TestDoctorCards_States(t *testing.T) {
	html, err := DoctorCards(DoctorList{Result: model.ListOf([]model.Doctor{sampleDoctor}), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(html), "doctor-card"))

	html, err = DoctorCards(DoctorList{Result: model.ListOf[model.Doctor](nil)})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No doctors found matching the current criteria.")

	html, err = DoctorCards(DoctorList{Result: model.ListFailure[model.Doctor](errors.New("down"))})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Error loading doctors. Please check the API status.")
	assert.NotContains(t, string(html), "No doctors found")
}

func TestAppointmentRow(t *testing.T) {
	html, err := AppointmentRow(model.Appointment{
		PatientID: 101, PatientName: "John Doe", Phone: "555-0101",
		Email: "john@example.com", Prescription: "None",
	})
	require.NoError(t, err)

	out := string(html)
	for _, want := range []string{"101", "John Doe", "555-0101", "john@example.com", "None", "Prescribe", "disabled"} {
		assert.Contains(t, out, want)
	}
}

func TestScheduleRows_States(t *testing.T) {
	html, err := ScheduleRows(Schedule{Result: model.ListOf[model.Appointment](nil), Date: "2026-10-15", PatientName: "jane"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No appointments found for 2026-10-15 matching &#34;jane&#34;.")

	html, err = ScheduleRows(Schedule{Result: model.ListOf[model.Appointment](nil), Date: "2026-10-15"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No appointments found for 2026-10-15.")

	html, err = ScheduleRows(Schedule{Result: model.ListFailure[model.Appointment](errors.New("x")), Date: "2026-10-15"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Error connecting to the service. Please try again.")
}

func TestHeader_PerRole(t *testing.T) {
	tests := []struct {
		role    model.Role
		want    []string
		notWant []string
	}{
		{model.RoleAdmin, []string{"Add Doctor", "Logout", `action="/logout"`}, []string{"Sign Up"}},
		{model.RoleDoctor, []string{"Home", "Logout", `href="/doctor/dashboard"`}, []string{"Add Doctor", "Appointments"}},
		{model.RoleLoggedPatient, []string{"Home", "Appointments", `action="/patient/logout"`}, []string{"Add Doctor", "Sign Up"}},
		{model.RolePatient, []string{"Login", "Sign Up"}, []string{"Logout"}},
		{model.RoleAnonymous, []string{"Login", "Sign Up"}, []string{"Logout"}},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			html, err := Header(HeaderData{Role: tt.role})
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(html), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, string(html), w)
			}
		})
	}
}

func TestFooter(t *testing.T) {
	html, err := Footer(2026)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Copyright 2026 Smart Clinic")
	for _, col := range []string{"Company", "Support", "Legal", "Disclaimer"} {
		assert.Contains(t, out, col)
	}
}

func TestRenderer_Pages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Page(&buf, "home", PageData{Title: "Home", Year: 2026})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Select Your Role")
	assert.Contains(t, buf.String(), `action="/admin/login"`)
	assert.Contains(t, buf.String(), "Copyright 2026")

	buf.Reset()
	err = r.Page(&buf, "admin_dashboard", PageData{
		Title:  "Admin",
		Header: HeaderData{Role: model.RoleAdmin},
		Content: map[string]interface{}{
			"FragmentURL": "/admin/doctors/cards",
			"Filter":      model.DoctorFilter{},
			"List":        DoctorList{Result: model.ListOf([]model.Doctor{sampleDoctor}), Role: model.RoleAdmin},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `id="add-doctor"`)
	assert.Contains(t, buf.String(), "Delete Doctor")

	assert.Error(t, r.Page(&buf, "missing", PageData{}))
}

func TestStatic(t *testing.T) {
	f, err := Static().Open("portal.js")
	require.NoError(t, err)
	f.Close()
}

func TestStatic_FilterScript(t *testing.T) {
	raw, err := fs.ReadFile(Static(), "portal.js")
	require.NoError(t, err)
	script := string(raw)

	assert.Contains(t, script, `params.set("view", viewId)`)
	assert.Contains(t, script, `params.set("epoch", String(mine))`)
	assert.NotContains(t, script, `addEventListener("input", reload)`)
	assert.NotContains(t, script, `addEventListener("change", reload)`)
}
