package fuzzy

import (
	"strings"
	"unicode/utf8"
)

// Approximate is an edit-distance substring matcher. The pattern is aligned
// against whichever substring of the candidate needs the fewest insertions,
// deletions and substitutions; the score is that error count divided by the
// pattern length.
type Approximate struct {
	opts Options
}

// NewApproximate creates an approximate matcher.
func NewApproximate(opts Options) *Approximate {
	return &Approximate{opts: opts}
}

// Match implements Matcher.
func (a *Approximate) Match(pattern string, candidates []string) []Match {
	p := []rune(Normalize(pattern))
	if len(p) == 0 {
		return nil
	}

	var (
		matches []Match
		rows    alignRows
	)
	for i, c := range candidates {
		score, ok := a.score(p, Normalize(c), &rows)
		if ok {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	return matches
}

// Score scores a single candidate. The second return value is false when
// the candidate is outside the threshold.
func (a *Approximate) Score(pattern, candidate string) (float64, bool) {
	p := []rune(Normalize(pattern))
	if len(p) == 0 {
		return 0, false
	}
	return a.score(p, Normalize(candidate), &alignRows{})
}

func (a *Approximate) score(p []rune, text string, rows *alignRows) (float64, bool) {
	var errs, start int
	if idx := strings.Index(text, string(p)); idx >= 0 {
		start = utf8.RuneCountInString(text[:idx])
	} else {
		errs, start = rows.align(p, []rune(text))
	}

	base := float64(errs) / float64(len(p))
	if base > a.opts.Threshold {
		return 0, false
	}
	score := finalScore(base, start, a.opts.Distance)
	if score > a.opts.Threshold {
		return 0, false
	}
	return score, true
}

// alignRows holds the two dynamic-programming rows reused across candidates.
type alignRows struct {
	prev, cur           []int
	prevStart, curStart []int
}

func (r *alignRows) reset(n int) {
	if cap(r.prev) < n+1 {
		r.prev = make([]int, n+1)
		r.cur = make([]int, n+1)
		r.prevStart = make([]int, n+1)
		r.curStart = make([]int, n+1)
	}
	r.prev = r.prev[:n+1]
	r.cur = r.cur[:n+1]
	r.prevStart = r.prevStart[:n+1]
	r.curStart = r.curStart[:n+1]
}

// align returns the minimum edit distance between p and any substring of t,
// together with the rune offset in t where the best alignment starts.
// Ties go to the earliest ending alignment.
func (r *alignRows) align(p, t []rune) (int, int) {
	n := len(t)
	r.reset(n)

	// An empty pattern prefix matches anywhere at no cost.
	for j := 0; j <= n; j++ {
		r.prev[j] = 0
		r.prevStart[j] = j
	}

	for i := 1; i <= len(p); i++ {
		r.cur[0] = i
		r.curStart[0] = 0
		for j := 1; j <= n; j++ {
			cost := 1
			if p[i-1] == t[j-1] {
				cost = 0
			}

			best, start := r.prev[j-1]+cost, r.prevStart[j-1]
			if d := r.prev[j] + 1; d < best {
				best, start = d, r.prevStart[j]
			}
			if d := r.cur[j-1] + 1; d < best {
				best, start = d, r.curStart[j-1]
			}
			r.cur[j] = best
			r.curStart[j] = start
		}
		r.prev, r.cur = r.cur, r.prev
		r.prevStart, r.curStart = r.curStart, r.prevStart
	}

	errs, start := r.prev[0], r.prevStart[0]
	for j := 1; j <= n; j++ {
		if r.prev[j] < errs {
			errs, start = r.prev[j], r.prevStart[j]
		}
	}
	return errs, start
}
