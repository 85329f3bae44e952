package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"time"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"formatMinute": func(t time.Time) string {
		if t.IsZero() {
			return "DataDesconhecida"
		}
		return t.Format("2006-01-02 15:04")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var errNotLoaded = errors.New("dashboard template not loaded: call views.LoadTemplates during startup")

func render(w io.Writer, name string, data any) error {
	if dashboardTmpl == nil {
		return errNotLoaded
	}
	return dashboardTmpl.ExecuteTemplate(w, name, data)
}

// AreaOption is one entry of the area selector.
type AreaOption struct {
	ID       int64
	Name     string
	Selected bool
}

type DashboardData struct {
	Areas          []AreaOption
	SelectedAreaID int64
	HasArea        bool
	RefreshSeconds int
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	return render(w, "dashboard.html", data)
}

// ReadingRow is one merged reading as shown in the chart and table.
type ReadingRow struct {
	SensorName string
	Timestamp  time.Time
	Value      float64
}

type ReadingsData struct {
	HasArea bool
	AreaID  int64
	Chart   *Chart
	Latest  []ReadingRow
}

// RenderReadingsPartial executes only the readings partial into w.
// Use for HTMX fragment refresh.
func RenderReadingsPartial(w io.Writer, data *ReadingsData) error {
	return render(w, "partials/readings.html", data)
}

// AlertItem is one line of the alert list.
type AlertItem struct {
	Timestamp time.Time
	AreaName  string
	Level     string
	Note      string
}

type AlertsData struct {
	HasArea bool
	AreaID  int64
	Alerts  []AlertItem
}

func RenderAlertsPartial(w io.Writer, data *AlertsData) error {
	return render(w, "partials/alerts.html", data)
}

func RenderMapPartial(w io.Writer, data *Map) error {
	return render(w, "partials/map.html", data)
}

// StatusData is the feedback shown after a dashboard action.
type StatusData struct {
	Message string
	OK      bool
}

func RenderStatusPartial(w io.Writer, data *StatusData) error {
	return render(w, "partials/status.html", data)
}
