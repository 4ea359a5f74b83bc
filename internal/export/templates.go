package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/ordering"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateData holds data for the grouped-view template.
type TemplateData struct {
	Title       string
	GeneratedAt time.Time
	Stats       standard.Stats
	Groups      []ordering.CategoryGroup
}

func newTemplate(now func() time.Time) *template.Template {
	funcMap := template.FuncMap{
		"formatDate": standard.FormatDate,
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"expired": func(s standard.Standard) bool {
			return s.ExpiryDate.Expired(now())
		},
	}
	return template.Must(template.New("standards.html").Funcs(funcMap).ParseFS(templateFS, "templates/standards.html"))
}

// RenderHTML renders the grouped view.
func (s *Service) RenderHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
