package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Addresses []string      `env:"TEST_CFG_ADDRESSES" envDefault:"http://localhost:9200" envSeparator:"," validate:"required,dive,url"`
	Timeout   time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	PoolSize  int           `env:"TEST_CFG_POOL_SIZE" envDefault:"8" validate:"gte=0"`
	Sniff     bool          `env:"TEST_CFG_SNIFF" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Addresses)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.False(t, cfg.Sniff)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_ADDRESSES", "http://es-1:9200,http://es-2:9200")
	t.Setenv("TEST_CFG_TIMEOUT", "250ms")
	t.Setenv("TEST_CFG_POOL_SIZE", "32")
	t.Setenv("TEST_CFG_SNIFF", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.Addresses)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 32, cfg.PoolSize)
	assert.True(t, cfg.Sniff)
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("ANALYTICS_TEST_CFG_TIMEOUT", "3s")

	var cfg testConfig
	err := LoadWithPrefix(&cfg, "ANALYTICS_")

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

type requiredConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_TIMEOUT", "soon")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_CFG_ADDRESSES", "not a url")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
	assert.Contains(t, err.Error(), "must be a valid URL")
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	t.Setenv("TEST_CFG_TIMEOUT", "0s")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}
