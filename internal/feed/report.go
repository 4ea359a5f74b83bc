package feed

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Status is the verdict of verifying one standard against its live page.
type Status string

const (
	StatusOK       Status = "OK"
	StatusSkipped  Status = "SKIPPED"
	StatusMismatch Status = "MISMATCH"
	StatusError    Status = "ERROR"
	StatusWarning  Status = "WARNING"
	StatusUpdate   Status = "UPDATE"
)

// Report is the verification report exchanged with the verification service.
type Report struct {
	Timestamp string         `json:"timestamp"`
	Results   []ReportResult `json:"results"`
}

// ReportResult is one standard's verification outcome.
type ReportResult struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Status Status   `json:"status"`
	Issues []string `json:"issues"`
}

// IssueField names the attribute an issue is about.
type IssueField string

const (
	FieldDate      IssueField = "Date"
	FieldCost      IssueField = "Cost"
	FieldStability IssueField = "Stability"
	FieldEdition   IssueField = "Edition"
)

// emptyMarker stands in for a blank local value in issue text.
const emptyMarker = "(empty)"

// Issue is a parsed "<Field>: Local='<old>' vs Live='<new>'" string.
type Issue struct {
	Field IssueField
	Local string
	Live  string
}

var issuePattern = regexp.MustCompile(`^(\w+): Local='(.*)' vs Live='(.*)'$`)

// ParseIssue decodes an issue string. Free-text issues ("Standard Withdrawn")
// and unknown fields report ok=false. "Version" is read as Edition.
func ParseIssue(text string) (Issue, bool) {
	match := issuePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return Issue{}, false
	}
	field := IssueField(match[1])
	switch field {
	case FieldDate, FieldCost, FieldStability, FieldEdition:
	case "Version":
		field = FieldEdition
	default:
		return Issue{}, false
	}
	local := match[2]
	if local == emptyMarker {
		local = ""
	}
	return Issue{Field: field, Local: local, Live: match[3]}, true
}

// String formats the issue in the exchange shape.
func (i Issue) String() string {
	local := i.Local
	if local == "" {
		local = emptyMarker
	}
	return fmt.Sprintf("%s: Local='%s' vs Live='%s'", i.Field, local, i.Live)
}

const reportSchemaURL = "https://dqa.local/schemas/verification-report.json"

const reportSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["results"],
  "properties": {
    "timestamp": {"type": "string"},
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "status"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": ["string", "null"]},
          "url": {"type": ["string", "null"]},
          "status": {"type": "string"},
          "issues": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    }
  }
}`

var reportSchema = mustCompileReportSchema()

func mustCompileReportSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(reportSchemaURL, strings.NewReader(reportSchemaJSON)); err != nil {
		panic(fmt.Sprintf("feed: load report schema: %v", err))
	}
	return c.MustCompile(reportSchemaURL)
}

// DecodeReport validates and decodes a verification report.
func DecodeReport(data []byte) (Report, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, fmt.Errorf("decode report json: %w", err)
	}
	if err := reportSchema.Validate(raw); err != nil {
		return Report{}, fmt.Errorf("report schema validation failed: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}
