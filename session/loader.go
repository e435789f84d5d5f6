package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
	"golang.org/x/sync/errgroup"
)

// ChangeFunc is called after a collection transitions to loaded or failed.
type ChangeFunc func(ctx context.Context, c globalsearch.Category)

// Loader fetches the three record collections from a Source into an
// in-memory searcher. Collections load independently and in any order.
// Each load starts a new generation per collection; a fetch that resolves
// after a newer one started is dropped instead of overwriting fresher data.
type Loader struct {
	source   globalsearch.Source
	index    *inmemory.Searcher
	onChange ChangeFunc
	logger   *slog.Logger

	mu   sync.Mutex
	gens map[globalsearch.Category]uint64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// OnChange registers the callback run after every collection transition.
func OnChange(fn ChangeFunc) LoaderOption {
	return func(l *Loader) {
		l.onChange = fn
	}
}

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader that fills index from source.
func NewLoader(source globalsearch.Source, index *inmemory.Searcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		index:  index,
		logger: slog.Default(),
		gens:   make(map[globalsearch.Category]uint64, len(globalsearch.Categories)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches all collections concurrently and waits for them. A failed
// collection is searched as empty; the others are unaffected. The returned
// error combines every fetch failure.
func (l *Loader) Load(ctx context.Context) error {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		combined error
	)

	for _, c := range globalsearch.Categories {
		gen := l.begin(c)
		g.Go(func() error {
			if err := l.load(ctx, c, gen); err != nil {
				mu.Lock()
				combined = errors.CombineErrors(combined, err)
				mu.Unlock()
				return err
			}
			return nil
		})
	}

	_ = g.Wait()
	return combined
}

// LoadCategory fetches a single collection.
func (l *Loader) LoadCategory(ctx context.Context, c globalsearch.Category) error {
	if !c.Valid() {
		return errors.WithSecondaryError(globalsearch.ErrUnknownCategory, errors.Newf("cannot load category %q", c))
	}
	return l.load(ctx, c, l.begin(c))
}

// Status reports the load status of a collection.
func (l *Loader) Status(c globalsearch.Category) inmemory.Status {
	return l.index.Status(c)
}

// begin starts a new generation for c.
func (l *Loader) begin(c globalsearch.Category) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[c]++
	return l.gens[c]
}

func (l *Loader) load(ctx context.Context, c globalsearch.Category, gen uint64) error {
	apply, count, fetchErr := l.fetch(ctx, c)

	l.mu.Lock()
	if l.gens[c] != gen {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "dropping superseded fetch", "category", c)
		return nil
	}
	if fetchErr != nil {
		l.index.MarkFailed(c)
	} else {
		apply()
	}
	l.mu.Unlock()

	if fetchErr != nil {
		l.logger.WarnContext(ctx, "failed to load collection; searching it as empty", "category", c, "error", fetchErr)
	} else {
		l.logger.InfoContext(ctx, "loaded collection", "category", c, "count", count)
	}

	if l.onChange != nil {
		l.onChange(ctx, c)
	}

	if fetchErr != nil {
		return errors.WithSecondaryError(globalsearch.ErrSourceUnavailable, errors.Wrapf(fetchErr, "failed to load %s", c))
	}
	return nil
}

// fetch lists one collection and returns a closure storing it in the index.
func (l *Loader) fetch(ctx context.Context, c globalsearch.Category) (func(), int, error) {
	switch c {
	case globalsearch.CategoryCatalogItem:
		items, err := l.source.CatalogItems(ctx)
		return func() { l.index.SetCatalogItems(items) }, len(items), err
	case globalsearch.CategoryOrder:
		orders, err := l.source.Orders(ctx)
		return func() { l.index.SetOrders(orders) }, len(orders), err
	case globalsearch.CategoryAccount:
		accounts, err := l.source.Accounts(ctx)
		return func() { l.index.SetAccounts(accounts) }, len(accounts), err
	default:
		return func() {}, 0, errors.Newf("no collection for category %q", c)
	}
}
