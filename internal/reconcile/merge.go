package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Counts summarizes an Apply call.
type Counts struct {
	New     int `json:"newCount"`
	Updated int `json:"updateCount"`
}

// Labels localizes the revision summary.
type Labels struct {
	Version       string
	EffectiveDate string
	Stability     string
	Cost          string
	DateSuffix    string
	DateLayout    string
}

// DefaultLabels is the Traditional Chinese wording the QA team reads.
var DefaultLabels = Labels{
	Version:       "版本",
	EffectiveDate: "發布日期",
	Stability:     "穩定性",
	Cost:          "價格",
	DateSuffix:    "更新",
	DateLayout:    "2006/1/2",
}

// EnglishLabels is the alternative wording.
var EnglishLabels = Labels{
	Version:       "version",
	EffectiveDate: "effective date",
	Stability:     "stability",
	Cost:          "cost",
	DateSuffix:    "",
	DateLayout:    standard.DateLayout,
}

// Merger applies approved updates to a collection.
type Merger struct {
	now    func() time.Time
	labels Labels
}

// NewMerger returns a merger; a nil clock means time.Now.
func NewMerger(now func() time.Time, labels Labels) *Merger {
	if now == nil {
		now = time.Now
	}
	return &Merger{now: now, labels: labels}
}

// Apply returns a new collection with updates applied, leaving the input
// untouched. NEW records are appended (an id that already exists is skipped);
// UPDATEs overwrite only the fields they carry and rewrite the revision
// summary. Updates for unknown ids are skipped.
func (m *Merger) Apply(collection []standard.Standard, updates []PendingUpdate) ([]standard.Standard, Counts) {
	out := standard.Clone(collection)
	var counts Counts
	for _, update := range updates {
		switch update.Kind {
		case KindNew:
			if update.TargetID == "" || standard.IndexOf(out, update.TargetID) >= 0 {
				continue
			}
			record := standard.Standard{ID: update.TargetID}
			for _, change := range update.Changes {
				if change.Field.Valid() {
					setField(&record, change.Field, change.New)
				}
			}
			out = append(out, record)
			counts.New++
		case KindUpdate:
			pos := standard.IndexOf(out, update.TargetID)
			if pos < 0 {
				continue
			}
			record := out[pos]
			for _, change := range update.Changes {
				if change.Field.Valid() {
					setField(&record, change.Field, change.New)
				}
			}
			if summary := m.Summary(update.Changes); summary != "" {
				record.RevisionSummary = summary
			} else if present(update.FallbackSummary) {
				record.RevisionSummary = update.FallbackSummary
			}
			out[pos] = record
			counts.Updated++
		}
	}
	return out, counts
}

// Summary builds the revision note for a set of changes, clauses ordered
// version, effective date, stability year, cost. It returns "" when nothing
// worth mentioning changed.
func (m *Merger) Summary(changes []Change) string {
	byField := make(map[Field]Change, len(changes))
	for _, change := range changes {
		byField[change.Field] = change
	}

	var clauses []string
	if c, ok := byField[FieldVersion]; ok && c.Old != c.New {
		clauses = append(clauses, m.clause(m.labels.Version, c.Old, c.New))
	}
	if c, ok := byField[FieldEffectiveDate]; ok && c.Old != c.New {
		clauses = append(clauses, m.clause(m.labels.EffectiveDate, c.Old, c.New))
	}
	if c, ok := byField[FieldExpiryDate]; ok {
		oldYear, hasOld := standard.ParseExpiry(c.Old).YearValue()
		newYear, hasNew := standard.ParseExpiry(c.New).YearValue()
		switch {
		case hasOld && hasNew && oldYear != newYear:
			clauses = append(clauses, fmt.Sprintf("%s: %d → %d", m.labels.Stability, oldYear, newYear))
		case hasNew && !hasOld:
			clauses = append(clauses, fmt.Sprintf("%s: %d", m.labels.Stability, newYear))
		}
	}
	if c, ok := byField[FieldCost]; ok && c.Old != c.New {
		clauses = append(clauses, m.clause(m.labels.Cost, c.Old, c.New))
	}
	if len(clauses) == 0 {
		return ""
	}
	date := m.now().Format(m.labels.DateLayout)
	return fmt.Sprintf("[%s%s]%s", date, m.labels.DateSuffix, strings.Join(clauses, "; "))
}

func (m *Merger) clause(label, before, after string) string {
	if !present(before) {
		before = "-"
	}
	return fmt.Sprintf("%s: %s → %s", label, before, after)
}
