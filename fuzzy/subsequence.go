package fuzzy

import (
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Subsequence matches when every pattern character appears in the candidate
// in order. The score is the share of unmatched characters inside the
// matched span, so contiguous matches score 0.
type Subsequence struct {
	opts Options
}

// NewSubsequence creates a subsequence matcher.
func NewSubsequence(opts Options) *Subsequence {
	return &Subsequence{opts: opts}
}

// normalizedSource implements fuzzy.Source over normalized candidates.
type normalizedSource []string

func (s normalizedSource) String(i int) string {
	return s[i]
}

func (s normalizedSource) Len() int {
	return len(s)
}

// Match implements Matcher.
func (s *Subsequence) Match(pattern string, candidates []string) []Match {
	p := Normalize(pattern)
	if p == "" || len(candidates) == 0 {
		return nil
	}

	src := make(normalizedSource, len(candidates))
	for i, c := range candidates {
		src[i] = Normalize(c)
	}

	scores := make(map[int]float64)
	for _, m := range fuzzy.FindFrom(p, src) {
		if len(m.MatchedIndexes) == 0 {
			continue
		}
		text := src[m.Index]
		first := m.MatchedIndexes[0]
		last := m.MatchedIndexes[len(m.MatchedIndexes)-1]

		span := utf8.RuneCountInString(text[first:last]) + 1
		matched := len(m.MatchedIndexes)
		base := 0.0
		if span > matched {
			base = float64(span-matched) / float64(span)
		}

		score := finalScore(base, utf8.RuneCountInString(text[:first]), s.opts.Distance)
		if score <= s.opts.Threshold {
			scores[m.Index] = score
		}
	}

	// sahilm/fuzzy sorts by its own score; restore candidate order.
	matches := make([]Match, 0, len(scores))
	for i := range candidates {
		if score, ok := scores[i]; ok {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	return matches
}
