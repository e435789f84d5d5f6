// Package session holds the state of one global search box: the current
// query, its results and whether the results panel is shown.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
)

// State is a snapshot of a session.
type State struct {
	Query   string                `json:"query"`
	Results []globalsearch.Result `json:"results"`
	// Open is true while the results panel is shown.
	Open bool `json:"open"`
}

// Session owns the query and result state of one search box. Every query
// change gets a generation number and a search that finishes after a newer
// query was issued is discarded, so results always belong to the latest
// query regardless of completion order.
type Session struct {
	searcher  globalsearch.Searcher
	navigator globalsearch.Navigator
	opts      []globalsearch.SearchOption
	logger    *slog.Logger

	mu      sync.Mutex
	gen     uint64
	query   string
	results []globalsearch.Result
	open    bool
}

// Option configures a Session.
type Option func(*Session)

// WithSearchOptions passes options to every search the session runs.
func WithSearchOptions(opts ...globalsearch.SearchOption) Option {
	return func(s *Session) {
		s.opts = append(s.opts, opts...)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session over searcher that navigates through navigator.
func New(searcher globalsearch.Searcher, navigator globalsearch.Navigator, opts ...Option) *Session {
	s := &Session{
		searcher:  searcher,
		navigator: navigator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery records a new query and evaluates it. The returned error is
// only about this evaluation; a superseded evaluation returns nil and
// leaves the newer state untouched.
func (s *Session) SetQuery(ctx context.Context, query string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.query = query
	s.mu.Unlock()

	return s.evaluate(ctx, gen, query)
}

// Refresh re-evaluates the current query, typically after a collection
// finished loading.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	query := s.query
	s.mu.Unlock()

	return s.evaluate(ctx, gen, query)
}

func (s *Session) evaluate(ctx context.Context, gen uint64, query string) error {
	results, err := s.searcher.Search(ctx, query, s.opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.DebugContext(ctx, "discarding superseded search", "query", query)
		return nil
	}
	if err != nil {
		s.results = nil
		s.open = false
		return errors.Wrapf(err, "search for %q failed", query)
	}

	s.results = results.Items
	s.open = len(s.results) > 0
	return nil
}

// Dismiss hides the results panel without clearing the query.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// Clear empties the query and results and hides the panel. Searches still
// in flight are superseded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.query = ""
	s.results = nil
	s.open = false
}

// Select navigates to the entry's route and clears the session. It returns
// the path navigated to.
func (s *Session) Select(ctx context.Context, entry globalsearch.Entry) (string, error) {
	path, err := globalsearch.Route(entry)
	if err != nil {
		return "", err
	}

	if s.navigator != nil {
		if err := s.navigator.Navigate(ctx, path); err != nil {
			return "", errors.Wrapf(err, "failed to navigate to %s", path)
		}
	}

	s.logger.InfoContext(ctx, "search result selected",
		"category", entry.Category,
		"id", entry.ID,
		"path", path,
	)

	s.Clear()
	return path, nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]globalsearch.Result, len(s.results))
	copy(results, s.results)
	return State{
		Query:   s.query,
		Results: results,
		Open:    s.open,
	}
}
