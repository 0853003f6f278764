// Package config loads the service configuration from defaults, an optional
// config file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/cache"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/tracing"
)

// Config is the full service configuration
type Config struct {
	Service  ServiceConfig   `mapstructure:"service"`
	Log      LogConfig       `mapstructure:"log"`
	HTTP     HTTPConfig      `mapstructure:"http"`
	GRPC     GRPCConfig      `mapstructure:"grpc"`
	Database database.Config `mapstructure:"database"`
	Redis    cache.Config    `mapstructure:"redis"`
	Kafka    kafka.Config    `mapstructure:"kafka"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Planning PlanningConfig  `mapstructure:"planning"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// Development reports whether logs should be human readable
func (c ServiceConfig) Development() bool {
	return c.Environment == "development"
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

// AuthConfig controls bearer token checks. Tokens are issued elsewhere and
// only verified here.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

// PlanningConfig tunes the material availability engine
type PlanningConfig struct {
	IncludeActiveOrders bool `mapstructure:"include_active_orders"`
}

var defaults = map[string]any{
	"service.name":        "manufacturing-erp",
	"service.environment": "development",
	"log.level":           "info",

	"http.port":             "8080",
	"http.timeout":          30 * time.Second,
	"http.shutdown_timeout": 10 * time.Second,
	"http.allowed_origins":  []string{"*"},
	"grpc.port":             "9090",

	"database.host":              "localhost",
	"database.port":              "5432",
	"database.user":              "postgres",
	"database.password":          "postgres",
	"database.name":              "erpdb",
	"database.sslmode":           "disable",
	"database.max_open_conns":    25,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": 5 * time.Minute,
	"database.slow_threshold":    200 * time.Millisecond,
	"database.debug":             false,

	"redis.enabled":   false,
	"redis.addr":      "localhost:6379",
	"redis.password":  "",
	"redis.db":        0,
	"redis.usage_ttl": 30 * time.Second,

	"kafka.enabled":  false,
	"kafka.brokers":  []string{"localhost:9092"},
	"kafka.group_id": "manufacturing-erp",

	"tracing.enabled":         false,
	"tracing.service_name":    "manufacturing-erp",
	"tracing.service_version": "1.0.0",
	"tracing.jaeger_endpoint": "http://localhost:14268/api/traces",
	"tracing.sample_ratio":    1.0,

	"auth.enabled": false,
	"auth.secret":  "",
	"auth.issuer":  "erp-auth",

	"planning.include_active_orders": false,
}

// Load reads the configuration. path names an optional config file; when
// empty, config.yaml is looked up in the working directory and ./config.
// Environment variables override everything, with dots replaced by
// underscores (DATABASE_HOST, PLANNING_INCLUDE_ACTIVE_ORDERS).
func Load(path string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return errors.New("http.port is required")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}
