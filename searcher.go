// Package globalsearch implements the admin dashboard's global search:
// projecting catalog items, orders and accounts into searchable entries,
// ranking them against a fuzzy query and routing a selected entry to a
// dashboard path.
package globalsearch

import "context"

// Searcher defines the core search interface.
type Searcher interface {
	// Search executes a search with the given query and options.
	Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error)
}

// SearcherFunc is a function type that implements the Searcher interface.
// This allows using a function as a Searcher, similar to http.HandlerFunc.
type SearcherFunc func(context.Context, string, ...SearchOption) (*Results, error)

// Search implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error) {
	return f(ctx, query, opts...)
}
