package client

import (
	"fmt"
	"log/slog"
	"time"

	pkgconfig "github.com/utafrali/esfuture/pkg/config"
)

// Connection modes accepted by Config.Mode.
const (
	ModeLocal     = "local"
	ModeTransport = "transport"
)

// Config describes a client in environment-variable form.
type Config struct {
	Mode      string   `env:"ES_MODE" envDefault:"transport" validate:"required,oneof=local transport"`
	Addresses []string `env:"ES_ADDRESSES" envDefault:"http://localhost:9200" envSeparator:"," validate:"required_without=CloudID,dive,url"`
	Username  string   `env:"ES_USERNAME"`
	Password  string   `env:"ES_PASSWORD"`
	APIKey    string   `env:"ES_API_KEY"`
	CloudID   string   `env:"ES_CLOUD_ID"`

	Sniff               bool          `env:"ES_SNIFF" envDefault:"false"`
	SniffInterval       time.Duration `env:"ES_SNIFF_INTERVAL" envDefault:"0s" validate:"gte=0"`
	MaxRetries          int           `env:"ES_MAX_RETRIES" envDefault:"3" validate:"gte=0"`
	CompressRequestBody bool          `env:"ES_COMPRESS_REQUEST_BODY" envDefault:"false"`

	CallTimeout       time.Duration `env:"ES_CALL_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	SyncWait          time.Duration `env:"ES_SYNC_WAIT" envDefault:"10s" validate:"gt=0"`
	PoolSize          int           `env:"ES_POOL_SIZE" envDefault:"0" validate:"gte=0"`
	SlowCallThreshold time.Duration `env:"ES_SLOW_CALL_THRESHOLD" envDefault:"0s" validate:"gte=0"`
}

// LoadConfig reads a Config from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	return cfg, nil
}

// Options converts the call-level settings into client options.
func (cfg *Config) Options(l *slog.Logger) []Option {
	return []Option{
		WithTimeout(cfg.CallTimeout),
		WithSyncWait(cfg.SyncWait),
		WithPoolSize(cfg.PoolSize),
		WithSlowCallThreshold(cfg.SlowCallThreshold),
		WithLogger(l),
	}
}

// NewFromConfig builds a local or transport client from cfg. Extra options
// are applied after the ones derived from cfg.
func NewFromConfig(cfg *Config, l *slog.Logger, extra ...Option) (*Client, error) {
	opts := append(cfg.Options(l), extra...)

	switch cfg.Mode {
	case ModeLocal:
		return NewLocal(opts...)
	case ModeTransport:
		// The vendor rejects a config carrying both a cloud id and addresses,
		// and Addresses always has its default.
		addresses := cfg.Addresses
		if cfg.CloudID != "" {
			addresses = nil
		}
		return NewTransport(addresses, TransportConfig{
			Username:            cfg.Username,
			Password:            cfg.Password,
			APIKey:              cfg.APIKey,
			CloudID:             cfg.CloudID,
			Sniff:               cfg.Sniff,
			SniffInterval:       cfg.SniffInterval,
			MaxRetries:          cfg.MaxRetries,
			CompressRequestBody: cfg.CompressRequestBody,
		}, opts...)
	default:
		return nil, fmt.Errorf("new client: unknown mode %q", cfg.Mode)
	}
}
