// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// GridDriver selects the tabular backend driver: "memory" or "sqlite".
	GridDriver string `koanf:"grid_driver"`

	// GridPath is the SQLite file path when GridDriver is "sqlite".
	GridPath string `koanf:"grid_path"`

	// CacheTTLSeconds bounds the scoreboard snapshot cache window.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// TokenSalt is the server-side secret mixed in on token collisions.
	TokenSalt string `koanf:"token_salt"`

	// TokenMaxRetries caps salted regeneration before giving up.
	TokenMaxRetries int `koanf:"token_max_retries"`

	// MaxTeamMembers fixes the roster slot width per team.
	MaxTeamMembers int `koanf:"max_team_members"`

	// MinNameLen and MaxNameLen bound team and member name lengths.
	MinNameLen int `koanf:"min_name_len"`
	MaxNameLen int `koanf:"max_name_len"`

	// AnswerSheets is the number of per-problem answer sheets (p1..pN).
	AnswerSheets int `koanf:"answer_sheets"`

	// PointValues maps a problem id ("1a") to the points awarded on first solve.
	PointValues map[string]int `koanf:"point_values"`

	// EventBucketPrefix names the score row a solved problem credits into;
	// problem "1a" credits "<prefix>0", "2b" credits "<prefix>1", and so on.
	EventBucketPrefix string `koanf:"event_bucket_prefix"`

	// FlagCategories orders CTF categories; position is the answer column.
	FlagCategories []string `koanf:"flag_categories"`

	// Timezone renders activity log timestamps, e.g. "US/Pacific".
	Timezone string `koanf:"timezone"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		GridDriver:      "memory",
		GridPath:        "sheetboard.db",
		CacheTTLSeconds: 10,
		TokenSalt:       "",
		TokenMaxRetries: 8,
		MaxTeamMembers:  4,
		MinNameLen:      2,
		MaxNameLen:      32,
		AnswerSheets:    5,
		PointValues: map[string]int{
			"1a": 10, "1b": 15,
			"2a": 10, "2b": 15,
			"3a": 10, "3b": 15,
			"4a": 10, "4b": 15,
			"5a": 10, "5b": 15,
		},
		EventBucketPrefix: "woc",
		FlagCategories:    []string{"web", "rev", "forensics", "osint", "crypto", "linux"},
		Timezone:          "US/Pacific",
	}
	return c
}
