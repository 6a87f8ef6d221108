package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		API:    APIConfig{BaseURL: "https://app.example.com"},
		Redis:  RedisConfig{URL: "redis://localhost:6379/0"},
		Clinic: ClinicConfig{ID: "92d5da39-36af-4fa2-bde3-3828600d7871", CustomerSiteID: 31},
		Checker: CheckerConfig{
			Interval: 10 * time.Second,
		},
	}
}

func TestLoadConfigFromEnvOnly(t *testing.T) {
	// No config file exists in this directory; everything comes from env.
	t.Cleanup(viper.Reset)
	t.Setenv("API_BASE_URL", "https://app.example.com")
	t.Setenv("API_KEY", "secret-key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CLINIC_ID", "92d5da39-36af-4fa2-bde3-3828600d7871")
	t.Setenv("CHECKER_SUBMIT_RATE", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://app.example.com", cfg.API.BaseURL)
	assert.Equal(t, "secret-key", cfg.API.Key)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "92d5da39-36af-4fa2-bde3-3828600d7871", cfg.Clinic.ID)
	assert.Equal(t, 2.5, cfg.Checker.SubmitRate)
	assert.Equal(t, 10*time.Second, cfg.Checker.Interval)

	require.NoError(t, cfg.Validate())
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateMissingRequired(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = ""
	cfg.Redis.URL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "redis.url")
}

func TestValidateClinicIDMustBeUUID(t *testing.T) {
	cfg := validConfig()
	cfg.Clinic.ID = "not-a-uuid"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clinic.id")
}

func TestValidateInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Checker.Interval = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checker.interval")
}

func TestIsLocalBaseURL(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.IsLocalBaseURL())

	cfg.API.BaseURL = "http://localhost:3000"
	assert.True(t, cfg.IsLocalBaseURL())

	cfg.API.BaseURL = "http://127.0.0.1:3000"
	assert.True(t, cfg.IsLocalBaseURL())
}
