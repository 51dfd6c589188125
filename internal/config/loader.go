package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COINZ_CONFIG is set
//  3. the legacy bare MONGO_URL and PORT variables
//  4. env (prefix COINZ_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COINZ_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: COINZ_ADDR, COINZ_MONGO_URL, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("COINZ_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "coinz_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Compatibility with the deployed env contract; the COINZ_ form wins
	// when both are set.
	if url := os.Getenv("MONGO_URL"); url != "" && os.Getenv("COINZ_MONGO_URL") == "" {
		cfg.MongoURL = url
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("COINZ_ADDR") == "" {
		cfg.Addr = ":" + port
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.MongoURL == "" {
		return nil, fmt.Errorf("%w: mongo_url (or MONGO_URL) must be set", ErrInvalidConfig)
	}
	return &cfg, nil
}
