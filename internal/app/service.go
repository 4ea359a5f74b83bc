package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/config"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/export"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/gitrepo"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/metrics"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/ordering"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/reconcile"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/search"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/store"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/syncer"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/synctoken"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/util"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/verify"
)

// Where a collection or a candidate set came from.
const (
	SourceFeed     = "feed"
	SourceStore    = "store"
	SourceSnapshot = "snapshot"
	SourceSeed     = "seed"
	SourceReport   = "report"
)

type slotStore interface {
	LoadStandards(ctx context.Context) ([]standard.Standard, bool, error)
	SaveStandards(ctx context.Context, items []standard.Standard) error
	LoadOrder(ctx context.Context, slot string) ([]string, bool, error)
	SaveOrder(ctx context.Context, slot string, order []string) error
	Ping(ctx context.Context) error
}

type snapshotRepo interface {
	Commit(items []standard.Standard, author, message string) (gitrepo.CommitInfo, error)
	Head() ([]standard.Standard, gitrepo.CommitInfo, error)
	History(limit int) ([]gitrepo.CommitInfo, error)
}

type feedSource interface {
	Configured() bool
	Fetch(ctx context.Context) ([]standard.Standard, error)
}

type syncTarget interface {
	Configured() bool
	Push(ctx context.Context, items []standard.Standard) (syncer.Result, error)
}

type searcher interface {
	Search(q search.Query, items []standard.Standard) search.Response
	Index(items []standard.Standard)
	Remove(ids ...string)
}

type mailer interface {
	IsConfigured() bool
	SendDigest(to []string, report feed.Report) (bool, error)
}

type exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

// Deps are a Service's collaborators. Store is required; a nil optional
// collaborator disables its feature.
type Deps struct {
	Store     slotStore
	Snapshots snapshotRepo
	Feed      feedSource
	Sync      syncTarget
	Verify    verify.Source
	Search    searcher
	Mailer    mailer
	Exporter  exporter
	Labels    reconcile.Labels
	Now       func() time.Time
}

// Service owns the canonical collection and both order sequences. Every
// operation on them runs under mu; network work (sync pushes, verification
// runs, feed downloads) happens on snapshots outside it.
type Service struct {
	cfg       config.Config
	store     slotStore
	snapshots snapshotRepo
	feed      feedSource
	sync      syncTarget
	verifier  verify.Source
	search    searcher
	mailer    mailer
	exporter  exporter
	merger    *reconcile.Merger
	now       func() time.Time
	events    *eventHub

	mu               sync.Mutex
	items            []standard.Standard
	categoryOrder    []string
	subcategoryOrder []string

	verifyMu sync.Mutex

	syncSeq  atomic.Uint64
	syncWG   sync.WaitGroup
	syncMu   sync.Mutex
	lastSync *SyncStatus
}

func New(cfg config.Config, deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Labels == (reconcile.Labels{}) {
		deps.Labels = reconcile.DefaultLabels
	}
	if deps.Search == nil {
		deps.Search = search.NewService(nil)
	}
	return &Service{
		cfg:              cfg,
		store:            deps.Store,
		snapshots:        deps.Snapshots,
		feed:             deps.Feed,
		sync:             deps.Sync,
		verifier:         deps.Verify,
		search:           deps.Search,
		mailer:           deps.Mailer,
		exporter:         deps.Exporter,
		merger:           reconcile.NewMerger(deps.Now, deps.Labels),
		now:              deps.Now,
		events:           newEventHub(),
		items:            []standard.Standard{},
		categoryOrder:    standard.DefaultCategoryOrder(),
		subcategoryOrder: standard.DefaultSubcategoryOrder(),
	}
}

// LoadResult reports which source won at startup.
type LoadResult struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Load fills the collection from the remote feed when one is configured and
// returns rows, else from the persistent store, else from the bundled seed.
// Orders missing from the store fall back to the defaults without being
// written.
func (s *Service) Load(ctx context.Context) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, source, err := s.loadCollection(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	s.items = items
	s.categoryOrder = s.loadOrder(ctx, store.SlotCategoryOrder, standard.DefaultCategoryOrder())
	s.subcategoryOrder = s.loadOrder(ctx, store.SlotSubcategoryOrder, standard.DefaultSubcategoryOrder())

	metrics.CollectionSize.Set(float64(len(items)))
	s.search.Index(items)
	log.Printf("load: %d standards from %s", len(items), source)
	return LoadResult{Source: source, Count: len(items)}, nil
}

func (s *Service) loadCollection(ctx context.Context) ([]standard.Standard, string, error) {
	if s.feed != nil && s.feed.Configured() {
		fetched, err := s.feed.Fetch(ctx)
		switch {
		case err != nil:
			log.Printf("load: remote feed unavailable, falling back: %v", err)
		case len(fetched) > 0:
			if err := s.store.SaveStandards(ctx, fetched); err != nil {
				log.Printf("load: persist feed collection: %v", err)
			}
			return fetched, SourceFeed, nil
		}
	}

	stored, ok, err := s.store.LoadStandards(ctx)
	if err != nil {
		log.Printf("load: read stored standards, falling back to seed: %v", err)
	} else if ok {
		return stored, SourceStore, nil
	}

	seed, err := standard.Seed()
	if err != nil {
		return nil, "", fmt.Errorf("load seed: %w", err)
	}
	return seed, SourceSeed, nil
}

func (s *Service) loadOrder(ctx context.Context, slot string, fallback []string) []string {
	order, ok, err := s.store.LoadOrder(ctx, slot)
	if err != nil {
		log.Printf("load: read %s: %v", slot, err)
		return fallback
	}
	if !ok {
		return fallback
	}
	return order
}

// Standards returns a copy of the collection in canonical order.
func (s *Service) Standards() []standard.Standard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return standard.Clone(s.items)
}

func (s *Service) Get(id string) (standard.Standard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := standard.IndexOf(s.items, id)
	if pos < 0 {
		return standard.Standard{}, notFound(id)
	}
	return s.items[pos], nil
}

// View is the grouped rendering of the collection.
type View struct {
	Query            string                   `json:"query,omitempty"`
	Total            int                      `json:"total"`
	Groups           []ordering.CategoryGroup `json:"groups"`
	CategoryOrder    []string                 `json:"categoryOrder"`
	SubcategoryOrder []string                 `json:"subcategoryOrder"`
}

// View groups the records matching query (all records when blank). The
// collection is never modified.
func (s *Service) View(query string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items
	if strings.TrimSpace(query) != "" {
		items = make([]standard.Standard, 0, len(s.items))
		for _, item := range s.items {
			if item.Matches(query) {
				items = append(items, item)
			}
		}
	}
	groups := ordering.GroupBy(items, s.categoryOrder, s.subcategoryOrder)
	if groups == nil {
		groups = []ordering.CategoryGroup{}
	}
	return View{
		Query:            strings.TrimSpace(query),
		Total:            len(items),
		Groups:           groups,
		CategoryOrder:    append([]string{}, s.categoryOrder...),
		SubcategoryOrder: append([]string{}, s.subcategoryOrder...),
	}
}

// Add inserts a new record at the front of the collection under a fresh id.
func (s *Service) Add(ctx context.Context, input standard.Standard) (standard.Standard, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return standard.Standard{}, validationError("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if standard.HasName(s.items, input.Name) {
		return standard.Standard{}, duplicateName(input.Name)
	}
	input.ID = util.NewID("std")

	next := make([]standard.Standard, 0, len(s.items)+1)
	next = append(next, input)
	next = append(next, s.items...)
	if err := s.commitLocked(ctx, next, "add"); err != nil {
		return standard.Standard{}, err
	}
	return input, nil
}

// StandardPatch carries the fields an edit overwrites; nil fields are kept.
type StandardPatch struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Version         *string `json:"version"`
	Category        *string `json:"category"`
	StressType      *string `json:"stressType"`
	Cost            *string `json:"cost"`
	EffectiveDate   *string `json:"effectiveDate"`
	ExpiryDate      *string `json:"expiryDate"`
	RevisionSummary *string `json:"revisionSummary"`
	SourceURL       *string `json:"sourceUrl"`
}

func (p StandardPatch) apply(item *standard.Standard) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&item.Name, p.Name)
	set(&item.Description, p.Description)
	set(&item.Version, p.Version)
	set(&item.Category, p.Category)
	set(&item.StressType, p.StressType)
	set(&item.Cost, p.Cost)
	set(&item.EffectiveDate, p.EffectiveDate)
	set(&item.RevisionSummary, p.RevisionSummary)
	set(&item.SourceURL, p.SourceURL)
	if p.ExpiryDate != nil {
		item.ExpiryDate = standard.ParseExpiry(*p.ExpiryDate)
	}
}

// Edit overwrites the given fields of one record in place. Only add checks
// names for duplicates.
func (s *Service) Edit(ctx context.Context, id string, patch StandardPatch) (standard.Standard, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return standard.Standard{}, validationError("name is required")
		}
		patch.Name = &trimmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := standard.IndexOf(s.items, id)
	if pos < 0 {
		return standard.Standard{}, notFound(id)
	}
	record := s.items[pos]
	patch.apply(&record)
	next := standard.Clone(s.items)
	next[pos] = record
	if err := s.commitLocked(ctx, next, "edit"); err != nil {
		return standard.Standard{}, err
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := standard.IndexOf(s.items, id)
	if pos < 0 {
		return notFound(id)
	}
	next := make([]standard.Standard, 0, len(s.items)-1)
	next = append(next, s.items[:pos]...)
	next = append(next, s.items[pos+1:]...)
	return s.commitLocked(ctx, next, "delete", id)
}

// MoveItem swaps a record with its neighbour inside its subcategory group.
// Boundary moves and unknown ids report false and write nothing.
func (s *Service) MoveItem(ctx context.Context, id string, dir ordering.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, moved := ordering.MoveItem(s.items, id, dir)
	if !moved {
		return false, nil
	}
	if err := s.commitLocked(ctx, next, "move_item"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) MoveCategory(ctx context.Context, label string, dir ordering.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, moved := ordering.MoveCategory(s.categoryOrder, label, dir)
	if !moved {
		return false, nil
	}
	if err := s.store.SaveOrder(ctx, store.SlotCategoryOrder, next); err != nil {
		return false, fmt.Errorf("persist category order: %w", err)
	}
	s.categoryOrder = next
	s.orderChanged("move_category")
	return true, nil
}

// MoveSubcategory appends a label missing from the order before moving it,
// and persists whenever the order changed, even if the move itself hit a
// boundary.
func (s *Service) MoveSubcategory(ctx context.Context, label string, dir ordering.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := ordering.MoveSubcategory(s.subcategoryOrder, label, dir)
	if !changed {
		return false, nil
	}
	if err := s.store.SaveOrder(ctx, store.SlotSubcategoryOrder, next); err != nil {
		return false, fmt.Errorf("persist subcategory order: %w", err)
	}
	s.subcategoryOrder = next
	s.orderChanged("move_subcategory")
	return true, nil
}

func (s *Service) Dashboard() standard.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return standard.Summarize(s.items, s.now())
}

// Search answers a free-text query, through Meilisearch when it is healthy.
func (s *Service) Search(q search.Query) search.Response {
	return s.search.Search(q, s.Standards())
}

// UpdateCheck is a reconciliation result awaiting approval.
type UpdateCheck struct {
	Source          string                    `json:"source"`
	Count           int                       `json:"count"`
	Updates         []reconcile.PendingUpdate `json:"updates"`
	ReportTimestamp string                    `json:"reportTimestamp,omitempty"`
	Warnings        []string                  `json:"warnings,omitempty"`
}

func (c *UpdateCheck) setUpdates(updates []reconcile.PendingUpdate) {
	if updates == nil {
		updates = []reconcile.PendingUpdate{}
	}
	c.Updates = updates
	c.Count = len(updates)
	for _, update := range updates {
		metrics.PendingUpdates.WithLabelValues(string(update.Kind)).Inc()
	}
}

// CheckUpdates reconciles the collection against the remote feed, or the
// last synced snapshot when the feed is absent or empty, or the bundled seed.
func (s *Service) CheckUpdates(ctx context.Context) (UpdateCheck, error) {
	candidates, source, warnings := s.candidates(ctx)
	check := s.CheckCandidates(source, candidates)
	check.Warnings = warnings
	return check, nil
}

// CheckCandidates reconciles the collection against caller-supplied records,
// such as a CSV file handed to the CLI.
func (s *Service) CheckCandidates(source string, candidates []standard.Standard) UpdateCheck {
	check := UpdateCheck{Source: source}
	check.setUpdates(reconcile.Reconcile(s.Standards(), candidates))
	log.Printf("updates: %d pending from %s", check.Count, source)
	return check
}

func (s *Service) candidates(ctx context.Context) ([]standard.Standard, string, []string) {
	var warnings []string
	if s.feed != nil && s.feed.Configured() {
		fetched, err := s.feed.Fetch(ctx)
		if err != nil {
			log.Printf("updates: remote feed unavailable: %v", err)
			warnings = append(warnings, fmt.Sprintf("remote feed unavailable: %v", err))
		} else if len(fetched) > 0 {
			return fetched, SourceFeed, warnings
		}
	}

	if s.snapshots != nil {
		items, _, err := s.snapshots.Head()
		switch {
		case errors.Is(err, gitrepo.ErrNoSnapshot):
		case err != nil:
			log.Printf("updates: read snapshot: %v", err)
			warnings = append(warnings, fmt.Sprintf("snapshot unavailable: %v", err))
		case len(items) > 0:
			return items, SourceSnapshot, warnings
		}
	}

	seed, err := standard.Seed()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("seed unavailable: %v", err))
		return nil, SourceSeed, warnings
	}
	return seed, SourceSeed, warnings
}

// ReportUpdates reconciles the collection against a verification report.
// With trigger set a fresh run is started first; if it fails the last stored
// report is used and a warning says so.
func (s *Service) ReportUpdates(ctx context.Context, trigger bool) (UpdateCheck, error) {
	local := s.Standards()
	check := UpdateCheck{Source: SourceReport}
	if s.verifier == nil {
		return UpdateCheck{}, errVerifyUnavailable
	}

	var (
		report feed.Report
		err    error
	)
	if trigger {
		report, err = s.runVerification(ctx, local)
		if err != nil {
			log.Printf("updates: verification run failed, using last report: %v", err)
			check.Warnings = append(check.Warnings, fmt.Sprintf("verification run failed, using last report: %v", err))
		}
	}
	if !trigger || err != nil {
		report, err = s.verifier.Latest(ctx)
		if errors.Is(err, verify.ErrNoReport) {
			check.Warnings = append(check.Warnings, "no verification report available")
			check.setUpdates(nil)
			return check, nil
		}
		if err != nil {
			log.Printf("updates: read verification report: %v", err)
			check.Warnings = append(check.Warnings, fmt.Sprintf("verification report unavailable: %v", err))
			check.setUpdates(nil)
			return check, nil
		}
	}

	check.ReportTimestamp = report.Timestamp
	check.setUpdates(reconcile.ReconcileReport(local, report))
	log.Printf("updates: %d pending from report %s", check.Count, report.Timestamp)
	return check, nil
}

// ApplyUpdates merges approved updates in one pass, persists, then syncs in
// the background. A sync failure never rolls the merge back.
func (s *Service) ApplyUpdates(ctx context.Context, updates []reconcile.PendingUpdate) (reconcile.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, counts := s.merger.Apply(s.items, updates)
	if counts.New+counts.Updated == 0 {
		return counts, nil
	}
	if err := s.commitLocked(ctx, next, "apply"); err != nil {
		return reconcile.Counts{}, err
	}
	metrics.AppliedUpdates.WithLabelValues(string(reconcile.KindNew)).Add(float64(counts.New))
	metrics.AppliedUpdates.WithLabelValues(string(reconcile.KindUpdate)).Add(float64(counts.Updated))
	log.Printf("updates: applied %d new, %d updated", counts.New, counts.Updated)
	return counts, nil
}

// Reset restores the bundled seed and the default orders.
func (s *Service) Reset(ctx context.Context) (int, error) {
	seed, err := standard.Seed()
	if err != nil {
		return 0, fmt.Errorf("load seed: %w", err)
	}
	categories := standard.DefaultCategoryOrder()
	subcategories := standard.DefaultSubcategoryOrder()

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for _, item := range s.items {
		if standard.IndexOf(seed, item.ID) < 0 {
			removed = append(removed, item.ID)
		}
	}
	if err := s.commitLocked(ctx, seed, "reset", removed...); err != nil {
		return 0, err
	}

	if err := s.store.SaveOrder(ctx, store.SlotCategoryOrder, categories); err != nil {
		return 0, fmt.Errorf("persist category order: %w", err)
	}
	s.categoryOrder = categories
	if err := s.store.SaveOrder(ctx, store.SlotSubcategoryOrder, subcategories); err != nil {
		return 0, fmt.Errorf("persist subcategory order: %w", err)
	}
	s.subcategoryOrder = subcategories
	return len(seed), nil
}

// commitLocked persists next, makes it the collection and fans the change
// out. On a persistence error the collection is left as it was.
func (s *Service) commitLocked(ctx context.Context, next []standard.Standard, op string, removed ...string) error {
	if err := s.store.SaveStandards(ctx, next); err != nil {
		return fmt.Errorf("persist standards: %w", err)
	}
	s.items = next

	metrics.Mutations.WithLabelValues(op).Inc()
	metrics.CollectionSize.Set(float64(len(next)))
	s.search.Index(next)
	if len(removed) > 0 {
		s.search.Remove(removed...)
	}
	s.events.publish(Event{Type: EventChanged, Op: op})
	s.startSync(standard.Clone(next))
	return nil
}

func (s *Service) orderChanged(op string) {
	metrics.Mutations.WithLabelValues(op).Inc()
	s.events.publish(Event{Type: EventChanged, Op: op})
}

// SyncStatus is the outcome of one background push.
type SyncStatus struct {
	Seq     uint64    `json:"seq"`
	At      time.Time `json:"at"`
	Count   int       `json:"count"`
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
}

// startSync pushes items in the background, at most once and without retry.
// Pushes carry an increasing sequence number; a slow early push can still
// land after a later one, so the logs and LastSync expose the sequence.
func (s *Service) startSync(items []standard.Standard) {
	if s.sync == nil || !s.sync.Configured() {
		return
	}
	seq := s.syncSeq.Add(1)
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := s.sync.Push(ctx, items)
		status := SyncStatus{Seq: seq, At: s.now(), Count: len(items), OK: err == nil, Message: result.Message}
		if err != nil {
			status.Message = err.Error()
			metrics.SyncOutcomes.WithLabelValues("failure").Inc()
			log.Printf("sync: #%d push of %d standards failed: %v", seq, len(items), err)
		} else {
			metrics.SyncOutcomes.WithLabelValues("success").Inc()
			log.Printf("sync: #%d pushed %d standards: %s", seq, len(items), result.Message)
		}
		s.recordSync(status)
		s.events.publish(Event{Type: EventSync, Data: status})
	}()
}

func (s *Service) recordSync(status SyncStatus) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if s.lastSync != nil && s.lastSync.Seq > status.Seq {
		log.Printf("sync: #%d finished after #%d; remote may hold the older collection", status.Seq, s.lastSync.Seq)
		return
	}
	s.lastSync = &status
}

// LastSync returns the most recent push outcome, or nil before the first.
func (s *Service) LastSync() *SyncStatus {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if s.lastSync == nil {
		return nil
	}
	status := *s.lastSync
	return &status
}

// SyncReceive stores a pushed collection as a snapshot commit.
func (s *Service) SyncReceive(ctx context.Context, token string, items []standard.Standard) (syncer.Result, error) {
	if err := s.authorizeSync(token); err != nil {
		return syncer.Result{}, err
	}
	if s.snapshots == nil {
		return syncer.Result{}, domainError(http.StatusServiceUnavailable, "SYNC_UNAVAILABLE", "Snapshot repository not configured", nil)
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return syncer.Result{}, validationError(fmt.Sprintf("standard at index %d has no id", i))
		}
		if _, dup := seen[id]; dup {
			return syncer.Result{}, validationError(fmt.Sprintf("duplicate id %s", id))
		}
		seen[id] = struct{}{}
	}
	if items == nil {
		items = []standard.Standard{}
	}

	info, err := s.snapshots.Commit(items, "sync", fmt.Sprintf("Sync %d standards", len(items)))
	if err != nil {
		return syncer.Result{}, fmt.Errorf("commit snapshot: %w", err)
	}
	log.Printf("sync: received %d standards, commit %s changed=%t", len(items), info.Hash, info.Changed)
	return syncer.Result{Status: "success", Message: fmt.Sprintf("Synced %d standards", len(items))}, nil
}

func (s *Service) authorizeSync(token string) error {
	if err := synctoken.Check(s.cfg.SyncTokenHash, token); err != nil {
		return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid sync token", nil)
	}
	return nil
}

func (s *Service) SyncHistory(limit int) ([]gitrepo.CommitInfo, error) {
	if s.snapshots == nil {
		return []gitrepo.CommitInfo{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	history, err := s.snapshots.History(limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	if history == nil {
		history = []gitrepo.CommitInfo{}
	}
	return history, nil
}

var (
	errVerifyUnavailable = domainError(http.StatusServiceUnavailable, "VERIFY_UNAVAILABLE", "Verification not configured", nil)
	errVerifyRunning     = domainError(http.StatusConflict, "VERIFY_RUNNING", "A verification run is already in progress", nil)
)

// RunVerify checks every record against its publisher page and stores the
// report.
func (s *Service) RunVerify(ctx context.Context) (feed.Report, error) {
	if s.verifier == nil {
		return feed.Report{}, errVerifyUnavailable
	}
	return s.runVerification(ctx, s.Standards())
}

func (s *Service) runVerification(ctx context.Context, items []standard.Standard) (feed.Report, error) {
	if !s.verifyMu.TryLock() {
		return feed.Report{}, errVerifyRunning
	}
	defer s.verifyMu.Unlock()

	started := time.Now()
	report, err := s.verifier.Trigger(ctx, items)
	metrics.VerifyDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return feed.Report{}, err
	}
	for _, result := range report.Results {
		metrics.VerifyResults.WithLabelValues(string(result.Status)).Inc()
	}
	log.Printf("verify: run finished, %d results in %s", len(report.Results), time.Since(started).Round(time.Second))

	s.sendDigest(report)
	s.events.publish(Event{Type: EventVerified, Data: map[string]any{"timestamp": report.Timestamp, "results": len(report.Results)}})
	return report, nil
}

func (s *Service) sendDigest(report feed.Report) {
	if s.mailer == nil || !s.mailer.IsConfigured() || len(s.cfg.DigestTo) == 0 {
		return
	}
	mailed, err := s.mailer.SendDigest(s.cfg.DigestTo, report)
	if err != nil {
		log.Printf("verify: digest mail failed: %v", err)
		return
	}
	if mailed {
		log.Printf("verify: digest mailed to %d recipients", len(s.cfg.DigestTo))
	}
}

func (s *Service) LatestReport(ctx context.Context) (feed.Report, error) {
	if s.verifier == nil {
		return feed.Report{}, errVerifyUnavailable
	}
	report, err := s.verifier.Latest(ctx)
	if errors.Is(err, verify.ErrNoReport) {
		return feed.Report{}, domainError(http.StatusNotFound, "NO_REPORT", "No verification report yet", nil)
	}
	return report, err
}

// Export renders the collection in its current grouping.
func (s *Service) Export(ctx context.Context, format export.Format) (*export.Result, error) {
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export not configured", nil)
	}
	s.mu.Lock()
	req := export.Request{
		Format:           format,
		Items:            standard.Clone(s.items),
		CategoryOrder:    append([]string{}, s.categoryOrder...),
		SubcategoryOrder: append([]string{}, s.subcategoryOrder...),
	}
	s.mu.Unlock()
	return s.exporter.Export(ctx, req)
}

// Subscribe registers for change events until cancel is called.
func (s *Service) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close waits for in-flight background pushes.
func (s *Service) Close() {
	s.syncWG.Wait()
}
