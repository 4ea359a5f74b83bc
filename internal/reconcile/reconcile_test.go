package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

func TestReconcileVersionChangeIgnoresEmptyCandidateCost(t *testing.T) {
	local := []standard.Standard{{ID: "s1", Name: "IEC 60068-2-1", Version: "2019", Cost: "200 CHF"}}
	candidates := []standard.Standard{{ID: "s1", Version: "2022", Cost: ""}}

	updates := Reconcile(local, candidates)
	require.Len(t, updates, 1)
	assert.Equal(t, KindUpdate, updates[0].Kind)
	assert.Equal(t, ChangeVersion, updates[0].ChangeType)
	assert.Equal(t, []Change{{Field: FieldVersion, Old: "2019", New: "2022"}}, updates[0].Changes)
}

func TestReconcileDataChangeAndOrder(t *testing.T) {
	local := []standard.Standard{
		{ID: "a", Version: "1", Cost: "CHF 10", ExpiryDate: standard.StabilityExpiry(2026)},
		{ID: "b", Version: "1", SourceURL: "https://old"},
		{ID: "c", Version: "1"},
	}
	candidates := []standard.Standard{
		{ID: "b", Version: "1", SourceURL: "https://new"},
		{ID: "z", Name: "New one"},
		{ID: "c", Version: "1", Description: "ignored field"},
		{ID: "a", Version: "1", Cost: "CHF 12", ExpiryDate: standard.ParseExpiry("2029(Stability)")},
	}

	updates := Reconcile(local, candidates)
	require.Len(t, updates, 3)

	assert.Equal(t, "b", updates[0].TargetID)
	assert.Equal(t, ChangeData, updates[0].ChangeType)

	assert.Equal(t, "z", updates[1].TargetID)
	assert.Equal(t, KindNew, updates[1].Kind)
	name, ok := updates[1].Change(FieldName)
	require.True(t, ok)
	assert.Equal(t, "New one", name.New)
	assert.Empty(t, name.Old)

	assert.Equal(t, "a", updates[2].TargetID)
	assert.Equal(t, []Change{
		{Field: FieldCost, Old: "CHF 10", New: "CHF 12"},
		{Field: FieldExpiryDate, Old: "2026 (Stability)", New: "2029 (Stability)"},
	}, updates[2].Changes)
}

func TestReconcileEmitsVacuousNew(t *testing.T) {
	updates := Reconcile(nil, []standard.Standard{{ID: "ghost"}})
	require.Len(t, updates, 1)
	assert.Equal(t, KindNew, updates[0].Kind)
}

func TestApplyAppendsNewAndSkipsUnknown(t *testing.T) {
	local := []standard.Standard{{ID: "s1", Name: "IEC 1", Version: "1"}}
	updates := []PendingUpdate{
		{TargetID: "missing", Kind: KindUpdate, Changes: []Change{{Field: FieldVersion, Old: "1", New: "2"}}},
		newRecordUpdate(standard.Standard{ID: "s2", Name: "IEC 2", ExpiryDate: standard.StabilityExpiry(2030)}),
	}

	merged, counts := NewMerger(fixedNow, DefaultLabels).Apply(local, updates)
	assert.Equal(t, Counts{New: 1, Updated: 0}, counts)
	require.Len(t, merged, 2)
	assert.Equal(t, "s2", merged[1].ID)
	assert.Equal(t, "IEC 2", merged[1].Name)
	assert.Equal(t, 2030, merged[1].ExpiryDate.Year)

	assert.Len(t, local, 1, "input collection must not change")
}

func TestApplySkipsNewForExistingID(t *testing.T) {
	local := []standard.Standard{{ID: "s1", Name: "IEC 1"}}
	merged, counts := NewMerger(fixedNow, DefaultLabels).Apply(local, []PendingUpdate{newRecordUpdate(standard.Standard{ID: "s1", Name: "Other"})})
	assert.Zero(t, counts.New)
	assert.Equal(t, local, merged)
}

func TestApplySynthesizesSummaryInPriorityOrder(t *testing.T) {
	local := []standard.Standard{{
		ID:              "s1",
		Version:         "Ed. 6.0",
		EffectiveDate:   "2007-03-29",
		Cost:            "CHF 140",
		ExpiryDate:      standard.StabilityExpiry(2026),
		RevisionSummary: "old note",
	}}
	update := PendingUpdate{
		TargetID: "s1",
		Kind:     KindUpdate,
		Changes: []Change{
			{Field: FieldCost, Old: "CHF 140", New: "CHF 155"},
			{Field: FieldExpiryDate, Old: "2026 (Stability)", New: "2029 (Stability)"},
			{Field: FieldVersion, Old: "Ed. 6.0", New: "Ed. 7.0"},
			{Field: FieldEffectiveDate, Old: "2007-03-29", New: "2024-05-01"},
		},
	}

	merged, counts := NewMerger(fixedNow, EnglishLabels).Apply(local, []PendingUpdate{update})
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, "Ed. 7.0", merged[0].Version)
	assert.Equal(t, "CHF 155", merged[0].Cost)
	assert.Equal(t, "2029 (Stability)", merged[0].ExpiryDate.String())
	assert.Equal(t,
		"[2026-10-19] version: Ed. 6.0 → Ed. 7.0; effective date: 2007-03-29 → 2024-05-01; stability: 2026 → 2029; cost: CHF 140 → CHF 155",
		merged[0].RevisionSummary)
}

func TestSummaryStabilityPhrasing(t *testing.T) {
	m := NewMerger(fixedNow, DefaultLabels)

	assert.Equal(t, "[2026/10/19更新]穩定性: 2029",
		m.Summary([]Change{{Field: FieldExpiryDate, Old: "", New: "2029 (Stability)"}}))
	assert.Empty(t, m.Summary([]Change{{Field: FieldExpiryDate, Old: "2029-01-01", New: "2029 (Stability)"}}))
	assert.Equal(t, "[2026/10/19更新]價格: - → CHF 55",
		m.Summary([]Change{{Field: FieldCost, Old: "", New: "CHF 55"}}))
}

func TestApplyEmptyDiffKeepsOrFallsBackSummary(t *testing.T) {
	local := []standard.Standard{
		{ID: "s1", RevisionSummary: "prior", SourceURL: "https://a"},
		{ID: "s2", RevisionSummary: "prior"},
	}
	updates := []PendingUpdate{
		{TargetID: "s1", Kind: KindUpdate, Changes: []Change{{Field: FieldSourceURL, Old: "https://a", New: "https://b"}}},
		{TargetID: "s2", Kind: KindUpdate, FallbackSummary: "from feed"},
	}

	merged, counts := NewMerger(fixedNow, DefaultLabels).Apply(local, updates)
	assert.Equal(t, 2, counts.Updated)
	assert.Equal(t, "prior", merged[0].RevisionSummary)
	assert.Equal(t, "https://b", merged[0].SourceURL)
	assert.Equal(t, "from feed", merged[1].RevisionSummary)
}

func TestReconcileReport(t *testing.T) {
	local := []standard.Standard{
		{ID: "s1", Name: "IEC 60068-2-1", Version: "Ed. 6.0", Cost: "", EffectiveDate: "2007-03-29",
			ExpiryDate: standard.StabilityExpiry(2026), SourceURL: "https://webstore.iec.ch/1", RevisionSummary: "keep"},
		{ID: "s2", Name: "IEC 60068-2-2", Version: "Ed. 6.0"},
	}
	report := feed.Report{Results: []feed.ReportResult{
		{ID: "s1", Status: feed.StatusMismatch, URL: "https://webstore.iec.ch/1", Issues: []string{
			"Edition: Local='Ed. 6.0' vs Live='7.0'",
			"Cost: Local='(empty)' vs Live='CHF 140'",
			"Stability: Local='2026 (Stability)' vs Live='2029'",
			"Standard Withdrawn",
		}},
		{ID: "s2", Status: feed.StatusOK, Issues: []string{"Edition: Local='Ed. 6.0' vs Live='8.0'"}},
		{ID: "ghost", Status: feed.StatusMismatch, Issues: []string{"Date: Local='x' vs Live='2024-01-01'"}},
	}}

	updates := ReconcileReport(local, report)
	require.Len(t, updates, 1)
	u := updates[0]
	assert.Equal(t, "s1", u.TargetID)
	assert.Equal(t, ChangeVersion, u.ChangeType)
	assert.Equal(t, "keep", u.FallbackSummary)
	assert.Len(t, u.Issues, 4)

	_, costChanged := u.Change(FieldCost)
	assert.False(t, costChanged, "blank local cost is presence-gated")
	expiry, ok := u.Change(FieldExpiryDate)
	require.True(t, ok)
	assert.Equal(t, "2029 (Stability)", expiry.New)
}
