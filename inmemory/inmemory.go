package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/letmevibethatforyou/globalsearch"
)

// Status describes whether a collection has been loaded.
type Status int

const (
	// StatusNotLoaded means the collection has not arrived yet; it is searched as empty.
	StatusNotLoaded Status = iota
	// StatusLoaded means the collection holds the latest fetched records.
	StatusLoaded
	// StatusFailed means the last fetch failed; the collection is searched as empty.
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// Searcher implements the globalsearch.Searcher interface over record
// collections held in memory. Entries are rebuilt from the collections on
// every search; only the records themselves are kept.
type Searcher struct {
	mu       sync.RWMutex
	items    []globalsearch.CatalogItem
	orders   []globalsearch.Order
	accounts []globalsearch.Account
	status   map[globalsearch.Category]Status
}

// New creates a new in-memory searcher with every collection not yet loaded.
// The searcher is safe for concurrent use.
func New() *Searcher {
	return &Searcher{
		status: make(map[globalsearch.Category]Status, len(globalsearch.Categories)),
	}
}

// SetCatalogItems replaces the catalog item collection and marks it loaded.
func (s *Searcher) SetCatalogItems(items []globalsearch.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.status[globalsearch.CategoryCatalogItem] = StatusLoaded
}

// SetOrders replaces the order collection and marks it loaded.
func (s *Searcher) SetOrders(orders []globalsearch.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.status[globalsearch.CategoryOrder] = StatusLoaded
}

// SetAccounts replaces the account collection and marks it loaded.
func (s *Searcher) SetAccounts(accounts []globalsearch.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
	s.status[globalsearch.CategoryAccount] = StatusLoaded
}

// MarkFailed empties a collection after a failed fetch.
func (s *Searcher) MarkFailed(c globalsearch.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch c {
	case globalsearch.CategoryCatalogItem:
		s.items = nil
	case globalsearch.CategoryOrder:
		s.orders = nil
	case globalsearch.CategoryAccount:
		s.accounts = nil
	default:
		return
	}
	s.status[c] = StatusFailed
}

// Status returns the load status of a collection.
func (s *Searcher) Status(c globalsearch.Category) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[c]
}

// Clear drops every collection and resets them to not loaded.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.orders = nil
	s.accounts = nil
	s.status = make(map[globalsearch.Category]Status, len(globalsearch.Categories))
}

// Size returns the number of records currently held across all collections.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) + len(s.orders) + len(s.accounts)
}

// Entries builds the entry list from the current collections.
func (s *Searcher) Entries() []globalsearch.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return globalsearch.BuildEntries(s.items, s.orders, s.accounts)
}

// Search implements the globalsearch.Searcher interface. Queries shorter
// than the minimum length after trimming yield empty results, not an error.
func (s *Searcher) Search(ctx context.Context, query string, opts ...globalsearch.SearchOption) (*globalsearch.Results, error) {
	startTime := time.Now()

	// Check context
	select {
	case <-ctx.Done():
		return nil, globalsearch.ErrCanceled
	default:
	}

	cfg, err := globalsearch.NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	results := &globalsearch.Results{
		Items: []globalsearch.Result{},
		Query: query,
	}

	pattern := strings.TrimSpace(query)
	if utf8.RuneCountInString(pattern) < cfg.MinQueryLength || pattern == "" {
		results.Took = time.Since(startTime).Milliseconds()
		return results, nil
	}

	matcher, err := cfg.NewMatcher()
	if err != nil {
		return nil, err
	}

	entries := filterCategories(s.Entries(), cfg)
	if len(entries) == 0 {
		results.Took = time.Since(startTime).Milliseconds()
		return results, nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.SearchText
	}

	select {
	case <-ctx.Done():
		return nil, globalsearch.ErrCanceled
	default:
	}

	matches := matcher.Match(pattern, texts)

	// Entries are in scan order, so a stable sort on score alone keeps
	// category order then source order for ties.
	scored := make([]globalsearch.Result, 0, len(matches))
	for _, m := range matches {
		scored = append(scored, globalsearch.Result{
			Entry: entries[m.Index],
			Score: m.Score,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	results.Total = int64(len(scored))
	if len(scored) > cfg.Limit {
		scored = scored[:cfg.Limit]
	}
	results.Items = scored
	results.Took = time.Since(startTime).Milliseconds()

	return results, nil
}

// filterCategories drops entries outside the configured categories.
func filterCategories(entries []globalsearch.Entry, cfg globalsearch.SearchConfig) []globalsearch.Entry {
	if len(cfg.Categories) == 0 {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if cfg.Includes(e.Category) {
			kept = append(kept, e)
		}
	}
	return kept
}
