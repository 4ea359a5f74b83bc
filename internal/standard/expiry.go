package standard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the canonical wire form of exact dates.
const DateLayout = "2006-01-02"

// ExpiryKind tags the variant held by an Expiry.
type ExpiryKind int

const (
	ExpiryNone ExpiryKind = iota
	ExpiryExact
	ExpiryStability
	ExpiryUnparsed
)

// Expiry is either an exact date, a stability year ("valid until this
// calendar year"), or a raw string nothing could make sense of.
type Expiry struct {
	Kind ExpiryKind
	Date time.Time
	Year int
	Raw  string
}

var (
	yearPattern = regexp.MustCompile(`\d{4}`)
	dateLayouts = []string{
		DateLayout,
		"2006/01/02",
		"2006/1/2",
		"2006-1-2",
		"2006.01.02",
		time.RFC3339,
		"2 Jan 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"January 2, 2006",
	}
)

// ExactExpiry builds an exact-date expiry.
func ExactExpiry(date time.Time) Expiry {
	y, m, d := date.Date()
	return Expiry{Kind: ExpiryExact, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// StabilityExpiry builds a stability-year expiry.
func StabilityExpiry(year int) Expiry {
	return Expiry{Kind: ExpiryStability, Year: year}
}

// ParseExpiry interprets a stored expiry string. It never fails: strings that
// are neither a stability marker nor a date are kept as ExpiryUnparsed.
func ParseExpiry(raw string) Expiry {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Expiry{}
	}
	if strings.Contains(strings.ToLower(s), "stability") {
		if year, ok := FindYear(s); ok {
			return StabilityExpiry(year)
		}
		return Expiry{Kind: ExpiryUnparsed, Raw: s}
	}
	if date, ok := ParseDate(s); ok {
		return ExactExpiry(date)
	}
	return Expiry{Kind: ExpiryUnparsed, Raw: s}
}

// ParseDate tries the date layouts seen in feeds and scraped pages.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FindYear extracts the first 4-digit run.
func FindYear(s string) (int, bool) {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// String returns the wire form: "2026-05-01", "2027 (Stability)" or the raw text.
func (e Expiry) String() string {
	switch e.Kind {
	case ExpiryExact:
		return e.Date.Format(DateLayout)
	case ExpiryStability:
		return fmt.Sprintf("%d (Stability)", e.Year)
	case ExpiryUnparsed:
		return e.Raw
	default:
		return ""
	}
}

// IsZero reports whether no expiry is recorded.
func (e Expiry) IsZero() bool {
	return e.Kind == ExpiryNone
}

// YearValue returns the 4-digit year component of any variant.
func (e Expiry) YearValue() (int, bool) {
	switch e.Kind {
	case ExpiryExact:
		return e.Date.Year(), true
	case ExpiryStability:
		return e.Year, true
	case ExpiryUnparsed:
		return FindYear(e.Raw)
	default:
		return 0, false
	}
}

// Expired reports whether the standard is past its validity at now. A
// stability year expires once the calendar year is over.
func (e Expiry) Expired(now time.Time) bool {
	switch e.Kind {
	case ExpiryStability:
		return now.Year() > e.Year
	case ExpiryExact:
		y, m, d := now.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return today.After(e.Date)
	default:
		return false
	}
}

// ExpiringBy reports whether the expiry falls in now's calendar year or earlier.
func (e Expiry) ExpiringBy(now time.Time) bool {
	switch e.Kind {
	case ExpiryStability:
		return e.Year <= now.Year()
	case ExpiryExact:
		return e.Date.Year() <= now.Year()
	default:
		return false
	}
}

func (e Expiry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *Expiry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = Expiry{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expiry must be a string: %w", err)
	}
	*e = ParseExpiry(raw)
	return nil
}

func (e *Expiry) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("expiry must be a string: %w", err)
	}
	*e = ParseExpiry(raw)
	return nil
}

// FormatDate renders a date or expiry string for display: the bare year for
// stability dates, YYYY/M/D for exact dates, else the first 4-digit year or
// the raw string.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	e := ParseExpiry(s)
	switch e.Kind {
	case ExpiryStability:
		return strconv.Itoa(e.Year)
	case ExpiryExact:
		return e.Date.Format("2006/1/2")
	}
	if year, ok := FindYear(s); ok {
		return strconv.Itoa(year)
	}
	return s
}
