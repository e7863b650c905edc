package service

import (
	"time"

	"github.com/acmx/sheetboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCacheTTL sets the scoreboard snapshot cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithTokenSalt sets the secret mixed in on token collisions.
func WithTokenSalt(salt string) Option {
	return func(s *Service) {
		s.tokenSalt = salt
	}
}

// WithTokenMaxRetries caps salted token regeneration.
func WithTokenMaxRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.tokenMaxRetries = n
		}
	}
}

// WithMaxMembers caps roster size per team.
func WithMaxMembers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMembers = n
		}
	}
}

// WithNameBounds sets the accepted name length range.
func WithNameBounds(min, max int) Option {
	return func(s *Service) {
		if min > 0 && max >= min {
			s.minNameLen = min
			s.maxNameLen = max
		}
	}
}

// WithPointValues maps problem ids to first-solve point awards.
func WithPointValues(points map[string]int) Option {
	return func(s *Service) {
		if points != nil {
			s.pointValues = points
		}
	}
}

// WithBucketPrefix names the score rows problem awards credit into.
func WithBucketPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.bucketPrefix = prefix
		}
	}
}

// WithFlagCategories orders the CTF categories.
func WithFlagCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.flagCategories = categories
		}
	}
}

// WithLocation sets the timezone used for activity log timestamps.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock injects the time source for caching, judging, and
// logging.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}
