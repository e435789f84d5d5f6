package globalsearch

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// Source is the read-only data-access layer the search consumes. Each
// collection is listed independently and may fail on its own.
type Source interface {
	CatalogItems(ctx context.Context) ([]CatalogItem, error)
	Orders(ctx context.Context) ([]Order, error)
	Accounts(ctx context.Context) ([]Account, error)
}

// StaticSource serves fixed collections. It is used for fixtures and tests.
type StaticSource struct {
	Items     []CatalogItem `json:"catalog_items"`
	OrderList []Order       `json:"orders"`
	Users     []Account     `json:"accounts"`
}

// CatalogItems implements Source.
func (s *StaticSource) CatalogItems(ctx context.Context) ([]CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}
	return s.Items, nil
}

// Orders implements Source.
func (s *StaticSource) Orders(ctx context.Context) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}
	return s.OrderList, nil
}

// Accounts implements Source.
func (s *StaticSource) Accounts(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}
	return s.Users, nil
}

// LoadFixture reads a JSON fixture of the form
// {"catalog_items": [...], "orders": [...], "accounts": [...]}.
func LoadFixture(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture %s", path)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture JSON.
func ParseFixture(data []byte) (*StaticSource, error) {
	var src StaticSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, errors.WithSecondaryError(ErrInvalidFixture, errors.Wrap(err, "failed to unmarshal fixture JSON"))
	}
	return &src, nil
}
