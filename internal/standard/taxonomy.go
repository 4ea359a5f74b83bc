package standard

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subcategory is the display group a stress type resolves to.
type Subcategory struct {
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Order int    `json:"order" yaml:"order"`
}

type taxonomyFile struct {
	Categories    []string `yaml:"categories"`
	Subcategories []struct {
		Subcategory `yaml:",inline"`
		StressTypes []string `yaml:"stressTypes"`
	} `yaml:"subcategories"`
	Fallback Subcategory `yaml:"fallback"`
}

type taxonomy struct {
	categories    []string
	byStressType  map[string]Subcategory
	subcategories []Subcategory
	fallback      Subcategory
}

//go:embed taxonomy.yaml
var taxonomyYAML []byte

var defaultTaxonomy = mustLoadTaxonomy(taxonomyYAML)

func mustLoadTaxonomy(raw []byte) taxonomy {
	var file taxonomyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		panic(fmt.Sprintf("standard: decode taxonomy: %v", err))
	}
	t := taxonomy{
		categories:   file.Categories,
		byStressType: make(map[string]Subcategory),
		fallback:     file.Fallback,
	}
	for _, entry := range file.Subcategories {
		t.subcategories = append(t.subcategories, entry.Subcategory)
		for _, stressType := range entry.StressTypes {
			t.byStressType[stressType] = entry.Subcategory
		}
	}
	t.subcategories = append(t.subcategories, file.Fallback)
	sort.SliceStable(t.subcategories, func(i, j int) bool {
		return t.subcategories[i].Order < t.subcategories[j].Order
	})
	return t
}

// ResolveSubcategory maps a stress type to its subcategory; unknown or blank
// stress types fall into the catch-all group.
func ResolveSubcategory(stressType string) Subcategory {
	if sub, ok := defaultTaxonomy.byStressType[strings.TrimSpace(stressType)]; ok {
		return sub
	}
	return defaultTaxonomy.fallback
}

// SubcategoryByName looks a subcategory up by its display label.
func SubcategoryByName(name string) (Subcategory, bool) {
	for _, sub := range defaultTaxonomy.subcategories {
		if sub.Name == name {
			return sub, true
		}
	}
	return Subcategory{}, false
}

// DefaultCategoryOrder is the category sequence used before any user reordering.
func DefaultCategoryOrder() []string {
	return append([]string(nil), defaultTaxonomy.categories...)
}

// DefaultSubcategoryOrder lists every subcategory label in taxonomy order.
func DefaultSubcategoryOrder() []string {
	out := make([]string, 0, len(defaultTaxonomy.subcategories))
	for _, sub := range defaultTaxonomy.subcategories {
		out = append(out, sub.Name)
	}
	return out
}
