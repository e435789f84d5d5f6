package globalsearch

// Result represents a single search result.
type Result struct {
	// Entry is the matched entry.
	Entry Entry `json:"entry"`

	// Score is the normalized match score; 0 is an exact match and lower is
	// more relevant.
	Score float64 `json:"score"`
}

// Results represents a collection of search results with metadata.
type Results struct {
	// Items contains the individual search results, most relevant first.
	Items []Result `json:"items"`

	// Total is the number of matching entries before the limit was applied.
	Total int64 `json:"total"`

	// Took is the time taken to execute the search in milliseconds.
	Took int64 `json:"took_ms"`

	// Query is the original query string for reference.
	Query string `json:"query"`
}

// Entries returns the entries of r in result order.
func (r *Results) Entries() []Entry {
	if r == nil {
		return nil
	}
	entries := make([]Entry, len(r.Items))
	for i, item := range r.Items {
		entries[i] = item.Entry
	}
	return entries
}

// Empty reports whether r holds no results.
func (r *Results) Empty() bool {
	return r == nil || len(r.Items) == 0
}
