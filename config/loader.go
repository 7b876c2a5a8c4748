package config

import (
	"errors"
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
//  2. file (YAML) if CSYNC_CONFIG is set
//  3. env (prefix CSYNC_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CSYNC_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: CSYNC_STORE_URL, CSYNC_LOOKBACK_DAYS, ...
	// Keys map to the flat koanf tags; underscores are preserved.
	envProvider := env.Provider("CSYNC_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "csync_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.LookbackDays <= 0 {
		return nil, errors.New("lookback_days must be positive")
	}
	if cfg.MaxBackfillDays < cfg.LookbackDays {
		cfg.MaxBackfillDays = cfg.LookbackDays
	}
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		return nil, errors.New("fuzzy_threshold must be in (0,1]")
	}
	return &cfg, nil
}
