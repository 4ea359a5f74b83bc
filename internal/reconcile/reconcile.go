package reconcile

import (
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Reconcile compares candidates against the local collection by id.
//
// A candidate with no local counterpart becomes a NEW update carrying all of
// its fields. For a known id only version, effectiveDate, cost, expiryDate and
// sourceUrl are compared, and a field counts as changed only when both sides
// are non-empty and differ. Updates come out in candidate order.
func Reconcile(local, candidates []standard.Standard) []PendingUpdate {
	index := make(map[string]int, len(local))
	for i, item := range local {
		if _, ok := index[item.ID]; !ok {
			index[item.ID] = i
		}
	}

	var out []PendingUpdate
	for _, candidate := range candidates {
		pos, found := index[candidate.ID]
		if !found {
			out = append(out, newRecordUpdate(candidate))
			continue
		}
		current := local[pos]

		var changes []Change
		versionChanged := false
		for _, field := range diffFields {
			before, after := fieldValue(current, field), fieldValue(candidate, field)
			if !present(before) || !present(after) || strings.TrimSpace(before) == strings.TrimSpace(after) {
				continue
			}
			changes = append(changes, Change{Field: field, Old: before, New: after})
			if field == FieldVersion {
				versionChanged = true
			}
		}
		if len(changes) == 0 {
			continue
		}

		changeType := ChangeData
		if versionChanged {
			changeType = ChangeVersion
		}
		out = append(out, PendingUpdate{
			TargetID:        current.ID,
			Name:            current.Name,
			Kind:            KindUpdate,
			ChangeType:      changeType,
			Changes:         changes,
			FallbackSummary: candidate.RevisionSummary,
		})
	}
	return out
}

func newRecordUpdate(candidate standard.Standard) PendingUpdate {
	changes := make([]Change, 0, len(recordFields))
	for _, field := range recordFields {
		changes = append(changes, Change{Field: field, New: fieldValue(candidate, field)})
	}
	return PendingUpdate{
		TargetID: candidate.ID,
		Name:     candidate.Name,
		Kind:     KindNew,
		Changes:  changes,
	}
}
