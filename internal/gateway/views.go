package gateway

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"tokoadmin/internal/models"

	"github.com/shopspring/decimal"
)

//go:embed views/*.html
var viewFS embed.FS

const layoutFile = "views/layout.html"

// Views holds one template set per page, each combined with the layout.
type Views struct {
	pages map[string]*template.Template
}

var viewFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "Rp " + d.StringFixed(2) },
	"when":  formatTime,
	"badge": badgeClass,
}

// LoadViews parses the embedded templates.
func LoadViews() (*Views, error) {
	files, err := fs.Glob(viewFS, "views/*.html")
	if err != nil {
		return nil, err
	}
	v := &Views{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(viewFuncs).ParseFS(viewFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes page name inside the layout.
func (v *Views) Render(w io.Writer, name string, data interface{}) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func formatTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("02 Jan 2006 15:04")
	case *time.Time:
		if t == nil {
			return "-"
		}
		return formatTime(*t)
	default:
		return "-"
	}
}

// badgeClass picks the bootstrap colour of a status badge. Labels outside the
// accepted statuses can still be stored by older rows and get a neutral
// colour or the one they historically had.
func badgeClass(status models.ShipmentStatus) string {
	switch strings.ToLower(string(status)) {
	case string(models.StatusPending):
		return "secondary"
	case "diproses":
		return "info"
	case string(models.StatusDikirim):
		return "primary"
	case "dalam perjalanan":
		return "warning"
	case string(models.StatusTerkirim):
		return "success"
	case "dibatalkan":
		return "danger"
	default:
		return "secondary"
	}
}
