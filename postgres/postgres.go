// Package postgres lists search records from the dashboard's Postgres tables.
package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/letmevibethatforyou/globalsearch"
)

const (
	catalogItemsQuery = `SELECT id::text, COALESCE(title, ''), COALESCE(slug, ''), COALESCE(brand, '')
FROM products`

	ordersQuery = `SELECT o.id::text, COALESCE(o.razorpay_order_id, ''), u.id::text, u.email, u.full_name
FROM orders o
LEFT JOIN users u ON u.id = o.user_id`

	accountsQuery = `SELECT id::text, COALESCE(email, ''), COALESCE(full_name, '')
FROM users`
)

// Querier is the subset of *pgxpool.Pool the source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source implements globalsearch.Source over Postgres.
type Source struct {
	q Querier
}

var _ globalsearch.Source = (*Source)(nil)

// New returns a Source reading through q.
func New(q Querier) *Source {
	return &Source{q: q}
}

// NewPool opens a connection pool for databaseURL and verifies it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database url")
	}

	// Reads are a handful of list queries per load.
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return pool, nil
}

// CatalogItems lists every product.
func (s *Source) CatalogItems(ctx context.Context) ([]globalsearch.CatalogItem, error) {
	rows, err := s.q.Query(ctx, catalogItemsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	var items []globalsearch.CatalogItem
	for rows.Next() {
		var item globalsearch.CatalogItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Slug, &item.Brand); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return items, nil
}

// Orders lists every order with its customer joined in. Orders without a
// linked user have a nil Customer.
func (s *Source) Orders(ctx context.Context) ([]globalsearch.Order, error) {
	rows, err := s.q.Query(ctx, ordersQuery)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var orders []globalsearch.Order
	for rows.Next() {
		var order globalsearch.Order
		var userID, email, fullName *string
		if err := rows.Scan(&order.ID, &order.PaymentReference, &userID, &email, &fullName); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		if userID != nil {
			order.Customer = &globalsearch.Customer{
				Email:    deref(email),
				FullName: deref(fullName),
			}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return orders, nil
}

// Accounts lists every user.
func (s *Source) Accounts(ctx context.Context) ([]globalsearch.Account, error) {
	rows, err := s.q.Query(ctx, accountsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	defer rows.Close()

	var accounts []globalsearch.Account
	for rows.Next() {
		var a globalsearch.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate users")
	}
	return accounts, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
