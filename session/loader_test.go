package session

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
)

// stubSource serves configurable collections and errors.
type stubSource struct {
	items       []globalsearch.CatalogItem
	orders      []globalsearch.Order
	accounts    []globalsearch.Account
	ordersErr   error
	accountsErr error
}

func (s *stubSource) CatalogItems(context.Context) ([]globalsearch.CatalogItem, error) {
	return s.items, nil
}

func (s *stubSource) Orders(context.Context) ([]globalsearch.Order, error) {
	return s.orders, s.ordersErr
}

func (s *stubSource) Accounts(context.Context) ([]globalsearch.Account, error) {
	return s.accounts, s.accountsErr
}

func TestLoaderLoad(t *testing.T) {
	src := &stubSource{
		items:    []globalsearch.CatalogItem{{ID: "p1", Title: "Red Hoodie"}},
		orders:   []globalsearch.Order{{ID: "o1", Customer: &globalsearch.Customer{Email: "hoodie@example.com"}}},
		accounts: []globalsearch.Account{{ID: "u1", Email: "fan@example.com"}},
	}
	idx := inmemory.New()

	var (
		mu      sync.Mutex
		changed = map[globalsearch.Category]int{}
	)
	l := NewLoader(src, idx, OnChange(func(_ context.Context, c globalsearch.Category) {
		mu.Lock()
		changed[c]++
		mu.Unlock()
	}))

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, c := range globalsearch.Categories {
		if got := l.Status(c); got != inmemory.StatusLoaded {
			t.Errorf("Expected %s loaded, got %s", c, got)
		}
		if changed[c] != 1 {
			t.Errorf("Expected one change notification for %s, got %d", c, changed[c])
		}
	}
	if idx.Size() != 3 {
		t.Errorf("Expected 3 records, got %d", idx.Size())
	}
}

func TestLoaderPartialFailure(t *testing.T) {
	src := &stubSource{
		items:     []globalsearch.CatalogItem{{ID: "p1", Title: "Red Hoodie"}},
		ordersErr: errors.New("permission denied for table orders"),
		accounts:  []globalsearch.Account{{ID: "u1", FullName: "Hoodie Fan", Email: "fan@example.com"}},
	}
	idx := inmemory.New()
	l := NewLoader(src, idx)

	err := l.Load(context.Background())
	if !errors.Is(err, globalsearch.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}

	if got := l.Status(globalsearch.CategoryOrder); got != inmemory.StatusFailed {
		t.Errorf("Expected orders failed, got %s", got)
	}
	if got := l.Status(globalsearch.CategoryCatalogItem); got != inmemory.StatusLoaded {
		t.Errorf("Expected catalog items loaded, got %s", got)
	}

	results, err := idx.Search(context.Background(), "hoodie")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results.Items) != 2 {
		t.Errorf("Expected 2 results from the loaded collections, got %d", len(results.Items))
	}
}

func TestLoaderUnknownCategory(t *testing.T) {
	l := NewLoader(&stubSource{}, inmemory.New())
	if err := l.LoadCategory(context.Background(), "coupon"); !errors.Is(err, globalsearch.ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

// gatedSource blocks the first catalog fetch until released.
type gatedSource struct {
	stubSource
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) CatalogItems(context.Context) ([]globalsearch.CatalogItem, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if call == 1 {
		close(s.started)
		<-s.release
		return []globalsearch.CatalogItem{{ID: "stale", Title: "Old Hoodie"}}, nil
	}
	return []globalsearch.CatalogItem{{ID: "fresh", Title: "New Hoodie"}}, nil
}

func TestLoaderSupersedesStaleFetch(t *testing.T) {
	src := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	idx := inmemory.New()
	l := NewLoader(src, idx)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		errc <- l.LoadCategory(ctx, globalsearch.CategoryCatalogItem)
	}()
	<-src.started

	if err := l.LoadCategory(ctx, globalsearch.CategoryCatalogItem); err != nil {
		t.Fatalf("LoadCategory failed: %v", err)
	}
	close(src.release)
	if err := <-errc; err != nil {
		t.Fatalf("Stale LoadCategory returned error: %v", err)
	}

	entries := idx.Entries()
	if len(entries) != 1 || entries[0].ID != "fresh" {
		t.Errorf("Expected only the fresh record, got %+v", entries)
	}
}

func TestLoaderRefreshesSession(t *testing.T) {
	idx := inmemory.New()
	s := New(idx, nil)
	ctx := context.Background()

	// The query arrives before any data.
	if err := s.SetQuery(ctx, "hoodie"); err != nil {
		t.Fatalf("SetQuery failed: %v", err)
	}
	if s.State().Open {
		t.Fatal("Expected hidden panel before data loaded")
	}

	src := &stubSource{items: []globalsearch.CatalogItem{{ID: "p1", Title: "Red Hoodie"}}}
	l := NewLoader(src, idx, OnChange(func(ctx context.Context, _ globalsearch.Category) {
		if err := s.Refresh(ctx); err != nil {
			t.Errorf("Refresh failed: %v", err)
		}
	}))
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	state := s.State()
	if !state.Open || len(state.Results) != 1 {
		t.Errorf("Expected the loaded item to show up, got %+v", state)
	}
}
