package crawler

import "time"

// settings is shared by both tiers; each tier reads the fields it needs.
type settings struct {
	filters      Filters
	delay        time.Duration
	maxBodyBytes int64
}

func defaultSettings() settings {
	return settings{
		filters:      DefaultFilters(),
		maxBodyBytes: 10 * 1024 * 1024, // 10MB
	}
}

// Option configures a crawl strategy.
type Option func(*settings)

// WithFilters replaces the image relevance keyword lists.
func WithFilters(f Filters) Option {
	return func(s *settings) {
		s.filters = f
	}
}

// WithDelay sets a politeness delay between page fetches.
func WithDelay(d time.Duration) Option {
	return func(s *settings) {
		s.delay = d
	}
}

// WithMaxBodyBytes caps how much of a response body the static tier reads.
func WithMaxBodyBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
