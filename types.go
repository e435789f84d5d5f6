package globalsearch

import "github.com/cockroachdb/errors"

// Category identifies the source collection an entry was projected from.
type Category string

const (
	// CategoryCatalogItem marks entries projected from catalog items (products).
	CategoryCatalogItem Category = "catalog_item"
	// CategoryOrder marks entries projected from orders.
	CategoryOrder Category = "order"
	// CategoryAccount marks entries projected from user accounts.
	CategoryAccount Category = "account"
)

// Categories lists every category in scan order.
var Categories = []Category{CategoryCatalogItem, CategoryOrder, CategoryAccount}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCatalogItem, CategoryOrder, CategoryAccount:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", errors.WithSecondaryError(ErrUnknownCategory, errors.Newf("category %q", s))
	}
	return c, nil
}

// ErrorCode represents specific error codes for search operations.
type ErrorCode int

const (
	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption ErrorCode = iota + 1000

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeUnknownCategory is returned when an entry carries a category
	// that cannot be routed.
	ErrCodeUnknownCategory

	// ErrCodeSourceUnavailable is returned when a record collection cannot be fetched.
	ErrCodeSourceUnavailable

	// ErrCodeInvalidFixture is returned when a fixture file cannot be decoded.
	ErrCodeInvalidFixture
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeUnknownCategory:
		return "unknown category"
	case ErrCodeSourceUnavailable:
		return "source unavailable"
	case ErrCodeInvalidFixture:
		return "invalid fixture"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by search operations.
var (
	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "globalsearch: invalid option")

	// ErrCanceled is returned when a search operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "globalsearch: operation canceled")

	// ErrUnknownCategory is returned when a category has no route or is not recognised.
	ErrUnknownCategory = newErrorWithCode(ErrCodeUnknownCategory, "globalsearch: unknown category")

	// ErrSourceUnavailable is returned when a record collection cannot be fetched.
	ErrSourceUnavailable = newErrorWithCode(ErrCodeSourceUnavailable, "globalsearch: source unavailable")

	// ErrInvalidFixture is returned when a fixture file cannot be decoded.
	ErrInvalidFixture = newErrorWithCode(ErrCodeInvalidFixture, "globalsearch: invalid fixture")
)
