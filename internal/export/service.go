package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os/exec"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/ordering"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

const defaultTitle = "DQA Environmental Standards"

// Service provides registry export functionality
type Service struct {
	now      func() time.Time
	lookPath func(string) (string, error)
	tmpl     *template.Template
	pdf      func(ctx context.Context, html string) ([]byte, error)
}

// NewService creates a new export service; a nil clock means time.Now.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	s := &Service{now: now, lookPath: exec.LookPath}
	s.tmpl = newTemplate(now)
	s.pdf = s.printPDF
	return s
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	title := req.Title
	if title == "" {
		title = defaultTitle
	}
	stamp := s.now().Format("20060102")

	switch req.Format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := feed.Write(&buf, req.Items); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
		return &Result{
			Data:     buf.Bytes(),
			Filename: sanitizeFilename(title) + "-" + stamp + ".csv",
			MimeType: "text/csv; charset=utf-8",
		}, nil

	case FormatPDF:
		html, err := s.RenderHTML(TemplateData{
			Title:       title,
			GeneratedAt: s.now(),
			Stats:       standard.Summarize(req.Items, s.now()),
			Groups:      ordering.GroupBy(req.Items, req.CategoryOrder, req.SubcategoryOrder),
		})
		if err != nil {
			return nil, fmt.Errorf("render template: %w", err)
		}
		data, err := s.pdf(ctx, html)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:     data,
			Filename: sanitizeFilename(title) + "-" + stamp + ".pdf",
			MimeType: "application/pdf",
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
}
