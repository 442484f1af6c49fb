// Package render turns backend records into HTML. Every renderer takes the
// viewer's role explicitly; nothing here reads the session.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Availability slots offered on the add-doctor form.
var defaultSlots = []string{
	"09:00-10:00", "10:00-11:00", "11:00-12:00",
	"14:00-15:00", "15:00-16:00", "16:00-17:00",
}

// Specialties offered in the dashboard filter.
var defaultSpecialties = []string{
	"Cardiology", "Dermatology", "General Practice", "Neurology",
	"Orthopedics", "Pediatrics", "Psychiatry",
}

var funcs = template.FuncMap{
	"card":          newCardView,
	"emptySchedule": emptyScheduleMessage,
	"slots":         func() []string { return defaultSlots },
	"specialties":   func() []string { return defaultSpecialties },
}

func parseBase() (*template.Template, error) {
	return template.New("partials").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
}

// partials serves fragment rendering. Pages parse their own copy because
// html/template refuses to clone a set once it has executed.
var partials = template.Must(parseBase())

var pageNames = []string{
	"home", "admin_dashboard", "doctor_dashboard", "patient_dashboard", "appointments",
}

// Flash is a one-shot notice shown above page content.
type Flash struct {
	Kind    string
	Message string
}

func ErrorFlash(msg string) *Flash   { return &Flash{Kind: "error", Message: msg} }
func SuccessFlash(msg string) *Flash { return &Flash{Kind: "success", Message: msg} }

// PageData is what the layout expects; Content is page specific.
type PageData struct {
	Title     string
	Header    HeaderData
	Year      int
	CSRFToken string
	CSRFField template.HTML
	Flash     *Flash
	Content   interface{}
}

// Renderer executes full pages, each composed of layout, partials and the
// page's content block.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		base, err := parseBase()
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		page, err := base.ParseFS(templateFS, "templates/pages/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

// Page writes a full page.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Fragment writes one named partial, as used by the filter endpoints.
func (r *Renderer) Fragment(w io.Writer, name string, data interface{}) error {
	return partials.ExecuteTemplate(w, name, data)
}

func executeHTML(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
