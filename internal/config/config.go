package config

import (
	"fmt"
	"time"

	"github.com/utafrali/esfuture/pkg/client"
	pkgconfig "github.com/utafrali/esfuture/pkg/config"
	"github.com/utafrali/esfuture/pkg/tracing"
)

// Config holds all configuration for the esprobe service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTP server
	HTTPPort        int           `env:"ESPROBE_HTTP_PORT" envDefault:"8090" validate:"min=1,max=65535"`
	RequestTimeout  time.Duration `env:"ESPROBE_REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"ESPROBE_SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ReadyTimeout    time.Duration `env:"ESPROBE_READY_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	// Elasticsearch client, ES_* variables
	Client client.Config

	// OpenTelemetry
	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load esprobe config: %w", err)
	}
	return cfg, nil
}
