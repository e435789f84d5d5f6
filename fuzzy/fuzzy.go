// Package fuzzy scores a query pattern against candidate texts.
//
// Scores are normalized to [0, 1]: 0 is an exact match and anything above
// the configured threshold is not a match at all. Matchers return matches
// in candidate order so callers can apply their own stable ordering.
package fuzzy

import "github.com/cockroachdb/errors"

// Strategy names a built-in matcher.
type Strategy string

const (
	// StrategyApproximate aligns the pattern against the closest substring
	// of the candidate using edit distance. Tolerates typos.
	StrategyApproximate Strategy = "approximate"
	// StrategySubsequence requires every pattern character to appear in
	// order and scores the gaps between them.
	StrategySubsequence Strategy = "subsequence"
)

// Valid reports whether s names a built-in matcher.
func (s Strategy) Valid() bool {
	return s == StrategyApproximate || s == StrategySubsequence
}

// Options tunes the built-in matchers.
type Options struct {
	// Threshold is the highest score still reported as a match.
	Threshold float64
	// Distance adds start/Distance to the score of a match that starts at
	// rune offset start. Zero disables the location penalty.
	Distance int
}

// Match is a candidate that scored within the threshold.
type Match struct {
	// Index is the candidate's position in the input slice.
	Index int
	// Score is the normalized score, 0 being exact.
	Score float64
}

// Matcher scores a pattern against candidates.
type Matcher interface {
	// Match returns the matching candidates in input order.
	Match(pattern string, candidates []string) []Match
}

// MatcherFunc is a function type that implements the Matcher interface.
type MatcherFunc func(pattern string, candidates []string) []Match

// Match implements the Matcher interface for MatcherFunc.
func (f MatcherFunc) Match(pattern string, candidates []string) []Match {
	return f(pattern, candidates)
}

// New builds the matcher for a strategy.
func New(s Strategy, opts Options) (Matcher, error) {
	switch s {
	case StrategyApproximate:
		return NewApproximate(opts), nil
	case StrategySubsequence:
		return NewSubsequence(opts), nil
	default:
		return nil, errors.Newf("fuzzy: unknown strategy %q", s)
	}
}

// finalScore adds the location penalty and clamps to [0, 1].
func finalScore(base float64, start, distance int) float64 {
	score := base
	if distance > 0 {
		score += float64(start) / float64(distance)
	}
	if score > 1 {
		return 1
	}
	return score
}
