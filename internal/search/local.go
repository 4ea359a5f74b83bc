package search

import (
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Local answers queries by normalized substring match over an in-memory
// snapshot of the collection.
func Local(items []standard.Standard, q Query) ([]Result, int) {
	var matched []Result
	for _, item := range items {
		if q.Category != "" && item.CategoryLabel() != q.Category {
			continue
		}
		if !item.Matches(q.Text) {
			continue
		}
		matched = append(matched, Result{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.CategoryLabel(),
			Subcategory: item.Subcategory().Name,
			Snippet:     item.Description,
		})
	}

	total := len(matched)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	start := q.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}
