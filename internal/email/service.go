// Package email sends the verification digest via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   sendFunc
}

// NewService creates a new email service
func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
		send:   smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s != nil && s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends an HTML email with a plain-text alternative.
func (s *Service) SendHTMLEmail(to []string, subject, textBody, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	return s.send(s.server, s.auth, s.config.From, to, buildMessage(s.from(), to, subject, textBody, htmlBody))
}

func (s *Service) from() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}
	return s.config.From
}

const boundary = "boundary-dqa-digest"

func buildMessage(from string, to []string, subject, textBody, htmlBody string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&msg, "%s\r\n\r\n", textBody)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&msg, "%s\r\n\r\n", htmlBody)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	return msg.Bytes()
}

// DigestData is the view model of the digest template.
type DigestData struct {
	AppName   string
	Timestamp string
	Total     int
	Counts    []StatusCount
	Findings  []feed.ReportResult
}

type StatusCount struct {
	Status feed.Status
	Count  int
}

// NewDigest summarises a report: counts per status and every result that
// needs attention (anything but OK and SKIPPED).
func NewDigest(report feed.Report) DigestData {
	counts := map[feed.Status]int{}
	data := DigestData{AppName: "DQA Standards Registry", Timestamp: report.Timestamp, Total: len(report.Results)}
	for _, result := range report.Results {
		counts[result.Status]++
		if result.Status != feed.StatusOK && result.Status != feed.StatusSkipped {
			data.Findings = append(data.Findings, result)
		}
	}
	for status, count := range counts {
		data.Counts = append(data.Counts, StatusCount{Status: status, Count: count})
	}
	sort.Slice(data.Counts, func(i, j int) bool { return data.Counts[i].Status < data.Counts[j].Status })
	return data
}

// SendDigest mails the summary of a verification run. Runs without findings
// are not mailed.
func (s *Service) SendDigest(to []string, report feed.Report) (bool, error) {
	data := NewDigest(report)
	if len(data.Findings) == 0 {
		return false, nil
	}

	html, err := renderTemplate(digestHTMLTemplate, data)
	if err != nil {
		return false, fmt.Errorf("render digest template: %w", err)
	}
	subject := fmt.Sprintf("[DQA] %d standard(s) need attention", len(data.Findings))
	if err := s.SendHTMLEmail(to, subject, digestText(data), html); err != nil {
		return false, err
	}
	return true, nil
}

func digestText(data DigestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verification run %s: %d standards checked.\n\n", data.Timestamp, data.Total)
	for _, finding := range data.Findings {
		fmt.Fprintf(&b, "%s [%s]\n", finding.Name, finding.Status)
		for _, issue := range finding.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}
	return b.String()
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.AppName}} verification digest</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.5; color: #333; max-width: 720px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #0066cc; padding-bottom: 10px; margin-bottom: 20px; }
        table { border-collapse: collapse; width: 100%; }
        td, th { border: 1px solid #ddd; padding: 6px 8px; text-align: left; vertical-align: top; }
        .status { font-weight: 600; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
        <p>Verification run {{.Timestamp}}: {{.Total}} standards checked.</p>
    </div>

    <p>{{range $i, $c := .Counts}}{{if $i}} · {{end}}{{$c.Status}}: {{$c.Count}}{{end}}</p>

    <table>
        <tr><th>Standard</th><th>Status</th><th>Issues</th></tr>
        {{range .Findings}}
        <tr>
            <td>{{if .URL}}<a href="{{.URL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</td>
            <td class="status">{{.Status}}</td>
            <td>{{range .Issues}}<div>{{.}}</div>{{end}}</td>
        </tr>
        {{end}}
    </table>

    <div class="footer">
        <p>Review pending updates in the registry before applying them.</p>
    </div>
</body>
</html>`
