package model

import "strings"

// FilterAll is the dropdown sentinel meaning "no constraint".
const FilterAll = "all"

func normalizeFilterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

// DoctorFilter is rebuilt from the search bar and dropdowns on every render.
type DoctorFilter struct {
	Name      string `form:"name"`
	Time      string `form:"time"`
	Specialty string `form:"specialty"`
}

// Normalize trims values and maps the "all" sentinel to empty.
func (f DoctorFilter) Normalize() DoctorFilter {
	return DoctorFilter{
		Name:      strings.TrimSpace(f.Name),
		Time:      normalizeFilterValue(f.Time),
		Specialty: normalizeFilterValue(f.Specialty),
	}
}

func (f DoctorFilter) IsEmpty() bool {
	n := f.Normalize()
	return n.Name == "" && n.Time == "" && n.Specialty == ""
}

// AppointmentFilter narrows a patient's appointment list.
type AppointmentFilter struct {
	Condition string `form:"condition"`
	Name      string `form:"name"`
}

func (f AppointmentFilter) Normalize() AppointmentFilter {
	return AppointmentFilter{
		Condition: normalizeFilterValue(f.Condition),
		Name:      strings.TrimSpace(f.Name),
	}
}

func (f AppointmentFilter) IsEmpty() bool {
	n := f.Normalize()
	return n.Condition == "" && n.Name == ""
}

// ScheduleFilter drives the doctor's daily appointment table.
type ScheduleFilter struct {
	Date        string `form:"date"`
	PatientName string `form:"name"`
}

// DateLayout is the YYYY-MM-DD format used by the date picker.
const DateLayout = "2006-01-02"
