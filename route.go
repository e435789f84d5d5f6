package globalsearch

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Dashboard paths results navigate to.
const (
	ProductsPath = "/admin/products"
	OrdersPath   = "/admin/orders"
	UsersPath    = "/admin/users"
)

// Navigator moves the dashboard to a path.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc is a function type that implements the Navigator interface.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate implements the Navigator interface for NavigatorFunc.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Route returns the navigation target for a selected entry. Only catalog
// items have a detail view; orders and accounts land on their list views.
func Route(e Entry) (string, error) {
	switch e.Category {
	case CategoryCatalogItem:
		return ProductsPath + "/" + url.PathEscape(e.ID), nil
	case CategoryOrder:
		return OrdersPath, nil
	case CategoryAccount:
		return UsersPath, nil
	default:
		return "", errors.WithSecondaryError(ErrUnknownCategory, errors.Newf("cannot route category %q", e.Category))
	}
}
