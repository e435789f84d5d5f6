package algolia

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
)

// Browser starts a browse over one index.
type Browser interface {
	BrowseObjects(ctx context.Context, indexName string) (HitIterator, error)
}

// Indices names the index holding each collection.
type Indices struct {
	CatalogItems string
	Orders       string
	Accounts     string
}

// DefaultIndices returns the index names used when none are configured,
// optionally prefixed (e.g. "prod_").
func DefaultIndices(prefix string) Indices {
	return Indices{
		CatalogItems: prefix + "catalog_items",
		Orders:       prefix + "orders",
		Accounts:     prefix + "accounts",
	}
}

// Source implements globalsearch.Source by browsing Algolia indices.
// Objects carry the record fields; the objectID fills in a missing id.
type Source struct {
	browser Browser
	indices Indices
}

var _ globalsearch.Source = (*Source)(nil)

// NewSource returns a Source reading the given indices through browser.
func NewSource(browser Browser, indices Indices) *Source {
	return &Source{browser: browser, indices: indices}
}

type catalogItemHit struct {
	ObjectID string `json:"objectID"`
	globalsearch.CatalogItem
}

type orderHit struct {
	ObjectID string `json:"objectID"`
	globalsearch.Order
}

type accountHit struct {
	ObjectID string `json:"objectID"`
	globalsearch.Account
}

// CatalogItems browses the catalog item index.
func (s *Source) CatalogItems(ctx context.Context) ([]globalsearch.CatalogItem, error) {
	hits, err := browseAll[catalogItemHit](ctx, s.browser, s.indices.CatalogItems)
	if err != nil {
		return nil, err
	}
	items := make([]globalsearch.CatalogItem, len(hits))
	for i, h := range hits {
		items[i] = h.CatalogItem
		items[i].ID = firstNonEmpty(h.ID, h.ObjectID)
	}
	return items, nil
}

// Orders browses the order index.
func (s *Source) Orders(ctx context.Context) ([]globalsearch.Order, error) {
	hits, err := browseAll[orderHit](ctx, s.browser, s.indices.Orders)
	if err != nil {
		return nil, err
	}
	orders := make([]globalsearch.Order, len(hits))
	for i, h := range hits {
		orders[i] = h.Order
		orders[i].ID = firstNonEmpty(h.ID, h.ObjectID)
	}
	return orders, nil
}

// Accounts browses the account index.
func (s *Source) Accounts(ctx context.Context) ([]globalsearch.Account, error) {
	hits, err := browseAll[accountHit](ctx, s.browser, s.indices.Accounts)
	if err != nil {
		return nil, err
	}
	accounts := make([]globalsearch.Account, len(hits))
	for i, h := range hits {
		accounts[i] = h.Account
		accounts[i].ID = firstNonEmpty(h.ID, h.ObjectID)
	}
	return accounts, nil
}

func browseAll[T any](ctx context.Context, b Browser, indexName string) ([]T, error) {
	it, err := b.BrowseObjects(ctx, indexName)
	if err != nil {
		return nil, err
	}

	var hits []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithSecondaryError(globalsearch.ErrCanceled, err)
		}

		var hit T
		if _, err := it.Next(&hit); err != nil {
			if errors.Is(err, io.EOF) {
				return hits, nil
			}
			return nil, errors.Wrapf(err, "failed to read object %d of index %s", len(hits), indexName)
		}
		hits = append(hits, hit)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
