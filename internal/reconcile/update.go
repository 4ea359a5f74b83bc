// Package reconcile diffs the local collection against candidate records and
// merges approved differences back.
package reconcile

import (
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Kind says whether an update introduces a record or amends one.
type Kind string

const (
	KindNew    Kind = "NEW"
	KindUpdate Kind = "UPDATE"
)

// ChangeType classifies an UPDATE.
type ChangeType string

const (
	ChangeVersion ChangeType = "VERSION"
	ChangeData    ChangeType = "DATA"
)

// Field names a Standard attribute by its wire name.
type Field string

const (
	FieldName            Field = "name"
	FieldDescription     Field = "description"
	FieldVersion         Field = "version"
	FieldCategory        Field = "category"
	FieldStressType      Field = "stressType"
	FieldCost            Field = "cost"
	FieldEffectiveDate   Field = "effectiveDate"
	FieldExpiryDate      Field = "expiryDate"
	FieldRevisionSummary Field = "revisionSummary"
	FieldSourceURL       Field = "sourceUrl"
	FieldLastVerified    Field = "lastVerified"
	FieldVerifiedBy      Field = "verifiedBy"
)

// recordFields is every field a NEW update carries.
var recordFields = []Field{
	FieldName,
	FieldDescription,
	FieldVersion,
	FieldCategory,
	FieldStressType,
	FieldCost,
	FieldEffectiveDate,
	FieldExpiryDate,
	FieldRevisionSummary,
	FieldSourceURL,
	FieldLastVerified,
	FieldVerifiedBy,
}

// diffFields are the only fields compared for existing records.
var diffFields = []Field{
	FieldVersion,
	FieldEffectiveDate,
	FieldCost,
	FieldExpiryDate,
	FieldSourceURL,
}

// Change is one field's old and new value.
type Change struct {
	Field Field  `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// PendingUpdate is a proposed change awaiting approval. It is never persisted.
type PendingUpdate struct {
	TargetID        string     `json:"targetId"`
	Name            string     `json:"name"`
	Kind            Kind       `json:"kind"`
	ChangeType      ChangeType `json:"changeType,omitempty"`
	Changes         []Change   `json:"changes"`
	FallbackSummary string     `json:"fallbackSummary,omitempty"`
	Issues          []string   `json:"issues,omitempty"`
}

// Change returns the change recorded for field, if any.
func (u PendingUpdate) Change(field Field) (Change, bool) {
	for _, change := range u.Changes {
		if change.Field == field {
			return change, true
		}
	}
	return Change{}, false
}

// Valid reports whether field is a known, writable field.
func (f Field) Valid() bool {
	for _, known := range recordFields {
		if f == known {
			return true
		}
	}
	return false
}

func fieldValue(s standard.Standard, field Field) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldDescription:
		return s.Description
	case FieldVersion:
		return s.Version
	case FieldCategory:
		return s.Category
	case FieldStressType:
		return s.StressType
	case FieldCost:
		return s.Cost
	case FieldEffectiveDate:
		return s.EffectiveDate
	case FieldExpiryDate:
		return s.ExpiryDate.String()
	case FieldRevisionSummary:
		return s.RevisionSummary
	case FieldSourceURL:
		return s.SourceURL
	case FieldLastVerified:
		return s.LastVerified
	case FieldVerifiedBy:
		return s.VerifiedBy
	default:
		return ""
	}
}

func setField(s *standard.Standard, field Field, value string) {
	switch field {
	case FieldName:
		s.Name = value
	case FieldDescription:
		s.Description = value
	case FieldVersion:
		s.Version = value
	case FieldCategory:
		s.Category = value
	case FieldStressType:
		s.StressType = value
	case FieldCost:
		s.Cost = value
	case FieldEffectiveDate:
		s.EffectiveDate = value
	case FieldExpiryDate:
		s.ExpiryDate = standard.ParseExpiry(value)
	case FieldRevisionSummary:
		s.RevisionSummary = value
	case FieldSourceURL:
		s.SourceURL = value
	case FieldLastVerified:
		s.LastVerified = value
	case FieldVerifiedBy:
		s.VerifiedBy = value
	}
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}
