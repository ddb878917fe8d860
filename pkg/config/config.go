package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Forecast strategy policies.
const (
	StrategyAuto     = "auto"
	StrategySeasonal = "seasonal"
	StrategyWeekly   = "weekly"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Postgres struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Database string `yaml:"database"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"ssl_mode"`
		MaxConns int    `yaml:"max_conns"`
	} `yaml:"postgres"`
	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		OrdersTopic string   `yaml:"orders_topic"`
		EventsTopic string   `yaml:"events_topic"`
		Compression string   `yaml:"compression"`
		Consumer    struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Forecast struct {
		Strategy       string        `yaml:"strategy"` // auto, seasonal, weekly
		SeasonalURL    string        `yaml:"seasonal_url"`
		SeasonalTO     time.Duration `yaml:"seasonal_timeout"`
		DefaultHorizon int           `yaml:"default_horizon"`
		MaxHorizon     int           `yaml:"max_horizon"`
		HistoryDays    int           `yaml:"history_days"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
	} `yaml:"forecast"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("SEASONAL_SERVICE_URL"); v != "" {
		c.Forecast.SeasonalURL = v
	}
	if v := os.Getenv("FORECAST_STRATEGY"); v != "" {
		c.Forecast.Strategy = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Forecast.Strategy == "" {
		c.Forecast.Strategy = "auto"
	}
	if c.Forecast.DefaultHorizon <= 0 {
		c.Forecast.DefaultHorizon = 7
	}
	if c.Forecast.MaxHorizon <= 0 {
		c.Forecast.MaxHorizon = 90
	}
	if c.Forecast.HistoryDays <= 0 {
		c.Forecast.HistoryDays = 365
	}
	if c.Forecast.SeasonalTO <= 0 {
		c.Forecast.SeasonalTO = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Forecast.Strategy {
	case StrategyAuto, StrategySeasonal, StrategyWeekly:
	default:
		return fmt.Errorf("forecast.strategy must be 'auto', 'seasonal' or 'weekly', got '%s'", c.Forecast.Strategy)
	}
	if c.Forecast.Strategy == StrategySeasonal && c.Forecast.SeasonalURL == "" {
		return fmt.Errorf("forecast.seasonal_url is required when strategy is 'seasonal'")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	return nil
}
