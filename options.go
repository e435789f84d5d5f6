package globalsearch

import (
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch/fuzzy"
)

const (
	// DefaultLimit is the maximum number of results returned by default.
	DefaultLimit = 8
	// DefaultThreshold is the default normalized score cutoff; 0 is an exact match.
	DefaultThreshold = 0.3
	// DefaultMinQueryLength is the trimmed query length below which no search runs.
	DefaultMinQueryLength = 2
)

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Limit specifies the maximum number of results to return.
	Limit int

	// Threshold is the highest normalized score (0 exact, 1 unrelated) still
	// considered a match.
	Threshold float64

	// MinQueryLength is the minimum number of runes a trimmed query needs
	// before any matching happens.
	MinQueryLength int

	// Distance enables a location penalty: a match starting at rune offset n
	// adds n/Distance to its score. Zero ignores match location.
	Distance int

	// Strategy selects the built-in matcher when Matcher is nil.
	Strategy fuzzy.Strategy

	// Matcher overrides the built-in matcher entirely.
	Matcher fuzzy.Matcher

	// Categories restricts the search to the listed categories. Empty means all.
	Categories []Category
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() SearchConfig {
	return SearchConfig{
		Limit:          DefaultLimit,
		Threshold:      DefaultThreshold,
		MinQueryLength: DefaultMinQueryLength,
		Strategy:       fuzzy.StrategyApproximate,
	}
}

// NewConfig applies opts on top of DefaultConfig and validates the result.
func NewConfig(opts ...SearchOption) (SearchConfig, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt.Apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

// Validate checks that every parameter is in range.
func (cfg SearchConfig) Validate() error {
	switch {
	case cfg.Limit < 1:
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("limit must be positive, got %d", cfg.Limit))
	case cfg.Threshold < 0 || cfg.Threshold > 1:
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("threshold must be within [0, 1], got %v", cfg.Threshold))
	case cfg.MinQueryLength < 0:
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("min query length cannot be negative, got %d", cfg.MinQueryLength))
	case cfg.Distance < 0:
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("distance cannot be negative, got %d", cfg.Distance))
	}
	for _, c := range cfg.Categories {
		if !c.Valid() {
			return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("unknown category %q", c))
		}
	}
	if cfg.Matcher == nil && !cfg.Strategy.Valid() {
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("unknown matcher strategy %q", cfg.Strategy))
	}
	return nil
}

// NewMatcher returns the configured matcher, building the strategy's
// matcher when no explicit one was given.
func (cfg SearchConfig) NewMatcher() (fuzzy.Matcher, error) {
	if cfg.Matcher != nil {
		return cfg.Matcher, nil
	}
	m, err := fuzzy.New(cfg.Strategy, fuzzy.Options{
		Threshold: cfg.Threshold,
		Distance:  cfg.Distance,
	})
	if err != nil {
		return nil, errors.WithSecondaryError(ErrInvalidOption, err)
	}
	return m, nil
}

// Includes reports whether the configuration searches category c.
func (cfg SearchConfig) Includes(c Category) bool {
	if len(cfg.Categories) == 0 {
		return true
	}
	for _, want := range cfg.Categories {
		if want == c {
			return true
		}
	}
	return false
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithLimit sets the maximum number of results to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Limit = n
	})
}

// WithThreshold sets the normalized score cutoff.
func WithThreshold(t float64) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Threshold = t
	})
}

// WithMinQueryLength sets the trimmed query length below which results are empty.
func WithMinQueryLength(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.MinQueryLength = n
	})
}

// WithDistance enables the location penalty.
func WithDistance(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Distance = n
	})
}

// WithStrategy selects a built-in matcher.
func WithStrategy(s fuzzy.Strategy) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Strategy = s
	})
}

// WithMatcher replaces the built-in matcher.
func WithMatcher(m fuzzy.Matcher) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Matcher = m
	})
}

// WithCategories restricts the search to the given categories.
func WithCategories(categories ...Category) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Categories = append(cfg.Categories, categories...)
	})
}
