package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Clinic  ClinicConfig  `mapstructure:"clinic"`
	Checker CheckerConfig `mapstructure:"checker"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig points at the deployed scheduling app, which also fronts the
// eligibility-check and history endpoints.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Key            string `mapstructure:"key"`
	ClientID       string `mapstructure:"client_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type ClinicConfig struct {
	ID             string `mapstructure:"id"`
	CustomerSiteID int    `mapstructure:"customer_site_id"`
}

type CheckerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	HealthPort     int           `mapstructure:"health_port"`
	SubmitRate     float64       `mapstructure:"submit_rate"`
	SubmitBurst    int           `mapstructure:"submit_burst"`
	TrackingTTL    time.Duration `mapstructure:"tracking_ttl"`
	ErrorTTL       time.Duration `mapstructure:"error_ttl"`
	TrackingPrefix string        `mapstructure:"tracking_prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about; keys without
	// a default must be bound explicitly or env-only deployments lose them.
	for _, key := range []string{"api.base_url", "api.key", "redis.url", "clinic.id"} {
		_ = viper.BindEnv(key)
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments run without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("api.client_id", "aster-clinic")
	viper.SetDefault("api.timeout_seconds", 30)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("clinic.customer_site_id", 31)
	viper.SetDefault("checker.interval", 10*time.Second)
	viper.SetDefault("checker.health_port", 8081)
	viper.SetDefault("checker.submit_rate", 5.0)
	viper.SetDefault("checker.submit_burst", 1)
	viper.SetDefault("checker.tracking_ttl", 7*24*time.Hour)
	viper.SetDefault("checker.error_ttl", 24*time.Hour)
	viper.SetDefault("checker.tracking_prefix", "auto-check:appointment:")
	viper.SetDefault("log.level", "info")
}

// Validate fails fast before the first batch runs.
func (c *Config) Validate() error {
	var missing []string
	if c.API.BaseURL == "" {
		missing = append(missing, "api.base_url")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "redis.url")
	}
	if c.Clinic.ID == "" {
		missing = append(missing, "clinic.id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if _, err := uuid.Parse(c.Clinic.ID); err != nil {
		return fmt.Errorf("clinic.id must be a UUID: %w", err)
	}

	if c.Checker.Interval <= 0 {
		return fmt.Errorf("checker.interval must be greater than 0")
	}

	return nil
}

// IsLocalBaseURL reports whether the API base URL points at localhost, which
// will not resolve when the checker runs on a separate host.
func (c *Config) IsLocalBaseURL() bool {
	return strings.Contains(c.API.BaseURL, "localhost") || strings.Contains(c.API.BaseURL, "127.0.0.1")
}
