// Package search indexes the registry in Meilisearch and answers free-text
// queries, falling back to an in-process substring match when Meilisearch is
// not configured or unhealthy.
package search

import (
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Engine names which backend produced a response.
type Engine string

const (
	EngineMeili Engine = "meilisearch"
	EngineLocal Engine = "local"
)

// Result is a single search hit returned to the caller.
type Result struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Snippet     string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text     string
	Category string // empty = all categories
	Limit    int
	Offset   int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Engine  Engine   `json:"engine"`
}

// StandardRecord is the data we index for a standard.
type StandardRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	StressType  string `json:"stressType"`
}

// RecordFrom flattens a standard into its index document.
func RecordFrom(s standard.Standard) StandardRecord {
	return StandardRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Version:     s.Version,
		Category:    s.CategoryLabel(),
		Subcategory: s.Subcategory().Name,
		StressType:  s.StressType,
	}
}

const defaultLimit = 20
