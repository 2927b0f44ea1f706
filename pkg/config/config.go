// Package config loads runtime settings from the environment with sane
// defaults, so the binary runs with no configuration at all.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every tunable of the collector.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `env:"WORDWATCH_DB" env-default:"wordwatch.db"`

	// PollInterval is how often the text source is checked for changes.
	PollInterval time.Duration `env:"WORDWATCH_POLL_INTERVAL" env-default:"1s"`

	// MaxTextLen caps the rune length processed as a single chunk.
	MaxTextLen int `env:"WORDWATCH_MAX_TEXT_LEN" env-default:"10000"`

	// LookupURL is the dictionary endpoint used to verify candidates.
	LookupURL string `env:"WORDWATCH_LOOKUP_URL"`

	// LookupWorkers bounds concurrent definition lookups.
	LookupWorkers int `env:"WORDWATCH_LOOKUP_WORKERS" env-default:"4"`

	// LookupTimeout caps a single definition lookup.
	LookupTimeout time.Duration `env:"WORDWATCH_LOOKUP_TIMEOUT" env-default:"5s"`

	// LookupCacheSize bounds the number of remembered lookup outcomes.
	LookupCacheSize int `env:"WORDWATCH_LOOKUP_CACHE" env-default:"1000"`

	// WindowHours is the rolling statistics window.
	WindowHours int `env:"WORDWATCH_WINDOW_HOURS" env-default:"12"`

	// StatsInterval is how often the statistics window is recomputed.
	StatsInterval time.Duration `env:"WORDWATCH_STATS_INTERVAL" env-default:"60s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
