package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Ingest struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"ingest"`
	Forecast struct {
		MaxHorizon       int           `yaml:"max_horizon"`
		LagWindow        int           `yaml:"lag_window"`
		MinLagWindow     int           `yaml:"min_lag_window"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		ModelDir         string        `yaml:"model_dir"`
		ScenarioFile     string        `yaml:"scenario_file"`
		ExogFile         string        `yaml:"exog_file"`
		DefaultScenarios []string      `yaml:"default_scenarios"`
	} `yaml:"forecast"`
	FXStream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Pairs          []string      `yaml:"pairs"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		MaxRPS         int           `yaml:"max_rps"`
	} `yaml:"fxstream"`
	Recommend struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"recommend"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		ResponseTTL time.Duration `yaml:"response_ttl"`
	} `yaml:"cache"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
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

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Ingest.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Ingest.Topic = v
	}
	if v := os.Getenv("SCENARIO_SHOCK_FILE"); v != "" {
		c.Forecast.ScenarioFile = v
	}
	if v := os.Getenv("FORECAST_EXOG_FILE"); v != "" {
		c.Forecast.ExogFile = v
	}
	if v := os.Getenv("FORECAST_MODEL_DIR"); v != "" {
		c.Forecast.ModelDir = v
	}
	if v := os.Getenv("FX_API_KEY"); v != "" {
		c.FXStream.APIKey = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Forecast.MaxHorizon == 0 {
		c.Forecast.MaxHorizon = 12
	}
	if c.Forecast.LagWindow == 0 {
		c.Forecast.LagWindow = 3
	}
	if c.Forecast.MinLagWindow == 0 {
		c.Forecast.MinLagWindow = 2
	}
	if c.Forecast.CacheTTL == 0 {
		c.Forecast.CacheTTL = 5 * time.Minute
	}
	if c.Cache.ResponseTTL == 0 {
		c.Cache.ResponseTTL = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
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
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Forecast.ScenarioFile == "" {
		return fmt.Errorf("forecast.scenario_file is required")
	}
	if c.Forecast.MaxHorizon < 1 || c.Forecast.MaxHorizon > 24 {
		return fmt.Errorf("forecast.max_horizon must be within 1..24, got %d", c.Forecast.MaxHorizon)
	}
	if c.Forecast.MinLagWindow > c.Forecast.LagWindow {
		return fmt.Errorf("forecast.min_lag_window (%d) exceeds lag_window (%d)", c.Forecast.MinLagWindow, c.Forecast.LagWindow)
	}
	if c.Ingest.Enabled && len(c.Ingest.Brokers) == 0 {
		return fmt.Errorf("ingest.brokers cannot be empty when ingest is enabled")
	}
	if c.Ingest.Enabled && c.Ingest.Topic == "" {
		return fmt.Errorf("ingest.topic is required when ingest is enabled")
	}
	if c.FXStream.Enabled && c.FXStream.WebSocketURL == "" {
		return fmt.Errorf("fxstream.websocket_url is required when fxstream is enabled")
	}
	return nil
}
