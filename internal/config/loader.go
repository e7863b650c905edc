package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if SHEETBOARD_CONFIG is set
//  3. env (prefix SHEETBOARD_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SHEETBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SHEETBOARD_ADDR, SHEETBOARD_CACHE_TTL_SECONDS, ...
	// Map env keys like SHEETBOARD_TOKEN_SALT -> token_salt (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SHEETBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sheetboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.GridDriver != "memory" && cfg.GridDriver != "sqlite":
		return fmt.Errorf("%w: unknown grid_driver %q", ErrInvalidConfig, cfg.GridDriver)
	case cfg.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case cfg.TokenMaxRetries <= 0:
		return fmt.Errorf("%w: token_max_retries must be positive", ErrInvalidConfig)
	case cfg.MaxTeamMembers <= 0:
		return fmt.Errorf("%w: max_team_members must be positive", ErrInvalidConfig)
	case cfg.MinNameLen < 1 || cfg.MaxNameLen < cfg.MinNameLen:
		return fmt.Errorf("%w: name length bounds are inverted", ErrInvalidConfig)
	case cfg.AnswerSheets < 1:
		return fmt.Errorf("%w: answer_sheets must be positive", ErrInvalidConfig)
	case len(cfg.FlagCategories) == 0:
		return fmt.Errorf("%w: flag_categories must not be empty", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(cfg.FlagCategories))
	for _, c := range cfg.FlagCategories {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate flag category %q", ErrInvalidConfig, c)
		}
		seen[c] = struct{}{}
	}
	if cfg.GridDriver == "sqlite" && cfg.GridPath == "" {
		return errors.Join(ErrInvalidConfig, errors.New("grid_path required for sqlite driver"))
	}
	return nil
}
