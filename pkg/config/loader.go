package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"github.com/utafrali/esfuture/pkg/validator"
)

// Load parses environment variables into the provided struct and validates
// the result. The struct uses `env` tags for mapping and `validate` tags for
// constraints.
//
// Example:
//
//	type Config struct {
//	    Addresses []string      `env:"ES_ADDRESSES" envSeparator:"," validate:"required,dive,url"`
//	    Timeout   time.Duration `env:"ES_CALL_TIMEOUT" envDefault:"10s" validate:"gt=0"`
//	}
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is Load with every variable name prefixed, so several
// clients can be configured side by side (e.g. "ANALYTICS_ES_ADDRESSES").
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
