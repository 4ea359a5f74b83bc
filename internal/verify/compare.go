package verify

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

var (
	editionNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)*`)
	nonDigitPattern      = regexp.MustCompile(`\D`)
)

// compareLive lists the differences between a local record and the data read
// off its publisher page. A value the page did not show is never an issue; a
// value the page shows but the record lacks is.
func compareLive(local standard.Standard, live LiveData) []feed.Issue {
	var issues []feed.Issue

	if live.Edition != "" {
		liveEd := editionNumber(live.Edition)
		localEd := editionNumber(local.Version)
		if liveEd != "" && (localEd == "" || !sameEdition(localEd, liveEd)) {
			issues = append(issues, feed.Issue{Field: feed.FieldEdition, Local: local.Version, Live: live.Edition})
		}
	}

	if live.PublicationDate != "" && !sameDate(local.EffectiveDate, live.PublicationDate) {
		issues = append(issues, feed.Issue{Field: feed.FieldDate, Local: local.EffectiveDate, Live: live.PublicationDate})
	}

	if live.Price != "" {
		livePrice := nonDigitPattern.ReplaceAllString(live.Price, "")
		localPrice := nonDigitPattern.ReplaceAllString(local.Cost, "")
		if livePrice != "" && livePrice != localPrice {
			issues = append(issues, feed.Issue{Field: feed.FieldCost, Local: local.Cost, Live: live.Price})
		}
	}

	if live.StabilityYear != "" {
		expiry := local.ExpiryDate.String()
		if !strings.Contains(expiry, live.StabilityYear) {
			issues = append(issues, feed.Issue{Field: feed.FieldStability, Local: expiry, Live: live.StabilityYear})
		}
	}

	return issues
}

// editionNumber extracts the dotted number from labels like "Ed. 7.0", or
// returns the trimmed input when it has none.
func editionNumber(label string) string {
	if m := editionNumberPattern.FindString(label); m != "" {
		return m
	}
	return strings.TrimSpace(label)
}

// sameEdition compares edition numbers as versions, so "7" equals "7.0".
func sameEdition(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return va.Equal(vb)
}

// sameMajor compares only the leading number of two edition labels. ok is
// false when either label has no number.
func sameMajor(a, b string) (same, ok bool) {
	va, errA := semver.NewVersion(editionNumberPattern.FindString(a))
	vb, errB := semver.NewVersion(editionNumberPattern.FindString(b))
	if errA != nil || errB != nil {
		return false, false
	}
	return va.Major() == vb.Major(), true
}

func sameDate(local, live string) bool {
	if strings.TrimSpace(local) == strings.TrimSpace(live) {
		return true
	}
	a, okA := standard.ParseDate(local)
	b, okB := standard.ParseDate(live)
	return okA && okB && a.Equal(b)
}
