package scorestore

import (
	"time"

	"github.com/acmx/sheetboard/pkg/logger"
)

// Option configures the Store.
type Option func(*Store)

// WithClock injects the time source used by the snapshot cache.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCacheTTL sets the snapshot cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithNameBounds sets the accepted length range for team, member, and
// event names.
func WithNameBounds(min, max int) Option {
	return func(s *Store) {
		if min > 0 && max >= min {
			s.minName = min
			s.maxName = max
		}
	}
}

// WithMaxMembers caps the roster size per team.
func WithMaxMembers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMembers = n
		}
	}
}

// WithLogger attaches a logger for rename warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logr = l
	}
}
