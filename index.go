package globalsearch

import "strings"

// orderTitleIDLength is how many leading runes of an order id go into its title.
const orderTitleIDLength = 8

// Entry is the searchable projection of one source record.
// Entries are derived for a single query evaluation and never stored.
type Entry struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	// Subtitle is empty when omitted.
	Subtitle string `json:"subtitle,omitempty"`
	// SearchText is the only field the matcher sees.
	SearchText string `json:"-"`
}

// Key returns an identifier that is unique across categories.
func (e Entry) Key() string {
	return string(e.Category) + ":" + e.ID
}

// BuildEntries projects the three collections into one flat entry list in
// scan order: catalog items, then orders, then accounts. Records whose
// search text would be empty are skipped.
func BuildEntries(items []CatalogItem, orders []Order, accounts []Account) []Entry {
	entries := make([]Entry, 0, len(items)+len(orders)+len(accounts))
	for _, item := range items {
		if e, ok := CatalogItemEntry(item); ok {
			entries = append(entries, e)
		}
	}
	for _, order := range orders {
		if e, ok := OrderEntry(order); ok {
			entries = append(entries, e)
		}
	}
	for _, account := range accounts {
		if e, ok := AccountEntry(account); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// CatalogItemEntry projects a catalog item. The second return value is false
// when the item has nothing to match on.
func CatalogItemEntry(item CatalogItem) (Entry, bool) {
	e := Entry{
		Category:   CategoryCatalogItem,
		ID:         item.ID,
		Title:      strings.TrimSpace(item.Title),
		Subtitle:   strings.TrimSpace(item.Brand),
		SearchText: joinText(item.Title, item.Slug, item.Brand),
	}
	return e, e.SearchText != ""
}

// OrderEntry projects an order. The title is "Order " followed by the first
// eight characters of the order id; the subtitle prefers the customer's
// email over their name.
func OrderEntry(order Order) (Entry, bool) {
	var email, name string
	if order.Customer != nil {
		email = strings.TrimSpace(order.Customer.Email)
		name = strings.TrimSpace(order.Customer.FullName)
	}

	subtitle := email
	if subtitle == "" {
		subtitle = name
	}

	e := Entry{
		Category:   CategoryOrder,
		ID:         order.ID,
		Title:      "Order " + prefix(order.ID, orderTitleIDLength),
		Subtitle:   subtitle,
		SearchText: joinText(order.ID, order.PaymentReference, email, name),
	}
	return e, e.SearchText != ""
}

// AccountEntry projects an account. The email only becomes the subtitle when
// the full name is present, otherwise it is already the title.
func AccountEntry(account Account) (Entry, bool) {
	name := strings.TrimSpace(account.FullName)
	email := strings.TrimSpace(account.Email)

	e := Entry{
		Category:   CategoryAccount,
		ID:         account.ID,
		Title:      name,
		SearchText: joinText(name, email),
	}
	if name == "" {
		e.Title = email
	} else {
		e.Subtitle = email
	}
	return e, e.SearchText != ""
}

// joinText joins the non-blank parts with a single space.
func joinText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
