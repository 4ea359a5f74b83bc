package ordering

import (
	"sort"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// CategoryGroup is one category heading of the rendered view.
type CategoryGroup struct {
	Name      string             `json:"name"`
	Subgroups []SubcategoryGroup `json:"subgroups"`
}

// SubcategoryGroup is one subcategory heading and its records in collection order.
type SubcategoryGroup struct {
	Name  string              `json:"name"`
	Icon  string              `json:"icon"`
	Items []standard.Standard `json:"items"`
}

// GroupBy projects the collection into ordered groups. Categories follow
// categoryOrder, then unlisted ones in first-seen order; subcategories follow
// subcategoryOrder, with unlisted ones after in first-seen order. Empty groups
// are omitted. The orders are read, never modified.
func GroupBy(collection []standard.Standard, categoryOrder, subcategoryOrder []string) []CategoryGroup {
	type bucket struct {
		subOrder []string
		subs     map[string]*SubcategoryGroup
	}
	buckets := make(map[string]*bucket)
	var seen []string

	for _, item := range collection {
		category := item.CategoryLabel()
		b, ok := buckets[category]
		if !ok {
			b = &bucket{subs: make(map[string]*SubcategoryGroup)}
			buckets[category] = b
			seen = append(seen, category)
		}
		sub := item.Subcategory()
		group, ok := b.subs[sub.Name]
		if !ok {
			group = &SubcategoryGroup{Name: sub.Name, Icon: sub.Icon}
			b.subs[sub.Name] = group
			b.subOrder = append(b.subOrder, sub.Name)
		}
		group.Items = append(group.Items, item)
	}

	rank := make(map[string]int, len(subcategoryOrder))
	for i, label := range subcategoryOrder {
		if _, dup := rank[label]; !dup {
			rank[label] = i
		}
	}
	subRank := func(label string) int {
		if r, ok := rank[label]; ok {
			return r
		}
		return len(subcategoryOrder)
	}

	var out []CategoryGroup
	emit := func(category string) {
		b, ok := buckets[category]
		if !ok {
			return
		}
		delete(buckets, category)
		names := append([]string(nil), b.subOrder...)
		sort.SliceStable(names, func(i, j int) bool {
			return subRank(names[i]) < subRank(names[j])
		})
		group := CategoryGroup{Name: category}
		for _, name := range names {
			group.Subgroups = append(group.Subgroups, *b.subs[name])
		}
		out = append(out, group)
	}
	for _, category := range categoryOrder {
		emit(category)
	}
	for _, category := range seen {
		emit(category)
	}
	return out
}
