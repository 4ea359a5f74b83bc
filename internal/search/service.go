package search

import (
	"log"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Service is the facade that tries Meilisearch first and falls back to Local.
type Service struct {
	meili *Meili
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili) *Service {
	return &Service{meili: meili}
}

// Search tries Meilisearch if healthy, otherwise matches against items.
func (s *Service) Search(q Query, items []standard.Standard) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: EngineMeili}
		}
		log.Printf("search: meilisearch error, falling back to local: %v", err)
	}

	results, total := Local(items, q)
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: EngineLocal}
}

// Index pushes records to Meilisearch (fire-and-forget).
func (s *Service) Index(items []standard.Standard) {
	if s.meili == nil || !s.meili.Healthy() || len(items) == 0 {
		return
	}
	records := make([]StandardRecord, 0, len(items))
	for _, item := range items {
		records = append(records, RecordFrom(item))
	}
	go func() {
		if err := s.meili.IndexStandards(records); err != nil {
			log.Printf("search: index %d standards: %v", len(records), err)
		}
	}()
}

// Remove deletes ids from the index (fire-and-forget).
func (s *Service) Remove(ids ...string) {
	if s.meili == nil || !s.meili.Healthy() || len(ids) == 0 {
		return
	}
	go func() {
		for _, id := range ids {
			if err := s.meili.DeleteStandard(id); err != nil {
				log.Printf("search: delete standard %s: %v", id, err)
			}
		}
	}()
}

// Close stops the Meilisearch health monitor, if any.
func (s *Service) Close() {
	if s.meili != nil {
		s.meili.Close()
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
