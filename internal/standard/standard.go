// Package standard defines the registry record and the pure helpers that
// interpret it: expiry dates, the subcategory taxonomy, name normalization,
// cost estimation and the bundled seed dataset.
package standard

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultCategory is the label used for records without a category.
const DefaultCategory = "Other"

// Standard is one tracked compliance/test standard.
type Standard struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	Version         string `json:"version" yaml:"version"`
	Category        string `json:"category" yaml:"category"`
	StressType      string `json:"stressType,omitempty" yaml:"stressType"`
	Cost            string `json:"cost" yaml:"cost"`
	EffectiveDate   string `json:"effectiveDate" yaml:"effectiveDate"`
	ExpiryDate      Expiry `json:"expiryDate" yaml:"expiryDate"`
	RevisionSummary string `json:"revisionSummary" yaml:"revisionSummary"`
	SourceURL       string `json:"sourceUrl" yaml:"sourceUrl"`
	LastVerified    string `json:"lastVerified,omitempty" yaml:"lastVerified"`
	VerifiedBy      string `json:"verifiedBy,omitempty" yaml:"verifiedBy"`
}

// CategoryLabel returns the grouping label, substituting DefaultCategory for blanks.
func (s Standard) CategoryLabel() string {
	if strings.TrimSpace(s.Category) == "" {
		return DefaultCategory
	}
	return s.Category
}

// Subcategory resolves the record's stress type against the taxonomy.
func (s Standard) Subcategory() Subcategory {
	return ResolveSubcategory(s.StressType)
}

// NormalizeName returns the dedup key for a display name: NFKC-folded,
// trimmed and upper-cased, so "iec 60068-2-1 " and "ＩＥＣ 60068-2-1" collide.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(name)))
}

// NormalizeSearch folds text for substring search: NFKC, lower case, and
// whitespace, '-' and '_' removed.
func NormalizeSearch(text string) string {
	folded := strings.ToLower(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '-' || r == '_':
			continue
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' || r == 0x3000:
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Matches reports whether the normalized query is a substring of the record's
// name, description, category or resolved subcategory label.
func (s Standard) Matches(query string) bool {
	needle := NormalizeSearch(query)
	if needle == "" {
		return true
	}
	for _, field := range []string{s.Name, s.Description, s.CategoryLabel(), s.Subcategory().Name} {
		if strings.Contains(NormalizeSearch(field), needle) {
			return true
		}
	}
	return false
}

// Clone returns a copy of the collection; records are values so a shallow copy suffices.
func Clone(items []Standard) []Standard {
	if items == nil {
		return nil
	}
	out := make([]Standard, len(items))
	copy(out, items)
	return out
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf(items []Standard, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// HasName reports whether any record's normalized name equals name's.
func HasName(items []Standard, name string) bool {
	key := NormalizeName(name)
	for _, item := range items {
		if NormalizeName(item.Name) == key {
			return true
		}
	}
	return false
}
