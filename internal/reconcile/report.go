package reconcile

import (
	"strconv"
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// CandidatesFromReport turns MISMATCH results into candidate records: the
// local record with the live values from each parseable issue substituted.
// Results for ids that are not in the collection are ignored, as are
// free-text issues.
func CandidatesFromReport(local []standard.Standard, report feed.Report) []standard.Standard {
	var out []standard.Standard
	for _, result := range report.Results {
		if result.Status != feed.StatusMismatch {
			continue
		}
		pos := standard.IndexOf(local, result.ID)
		if pos < 0 {
			continue
		}
		candidate := local[pos]
		for _, text := range result.Issues {
			issue, ok := feed.ParseIssue(text)
			if !ok {
				continue
			}
			switch issue.Field {
			case feed.FieldDate:
				candidate.EffectiveDate = issue.Live
			case feed.FieldCost:
				candidate.Cost = issue.Live
			case feed.FieldEdition:
				candidate.Version = issue.Live
			case feed.FieldStability:
				candidate.ExpiryDate = stabilityFromLive(issue.Live)
			}
		}
		if present(result.URL) {
			candidate.SourceURL = result.URL
		}
		out = append(out, candidate)
	}
	return out
}

// ReconcileReport runs the report's candidates through Reconcile and attaches
// the raw issue text to each resulting update for display.
func ReconcileReport(local []standard.Standard, report feed.Report) []PendingUpdate {
	updates := Reconcile(local, CandidatesFromReport(local, report))
	issues := make(map[string][]string, len(report.Results))
	for _, result := range report.Results {
		if result.Status == feed.StatusMismatch {
			issues[result.ID] = result.Issues
		}
	}
	for i := range updates {
		updates[i].Issues = issues[updates[i].TargetID]
	}
	return updates
}

func stabilityFromLive(live string) standard.Expiry {
	if strings.Contains(strings.ToLower(live), "stability") {
		return standard.ParseExpiry(live)
	}
	if year, ok := standard.FindYear(live); ok {
		return standard.StabilityExpiry(year)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(live)); err == nil {
		return standard.StabilityExpiry(n)
	}
	return standard.ParseExpiry(live)
}
