package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Transport TransportConfig `yaml:"transport"`
	Diff      DiffConfig      `yaml:"diff"`
	Budget    BudgetConfig    `yaml:"budget"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DefaultTenant string `yaml:"default_tenant"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

type DiffConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	LineModeThreshold int           `yaml:"line_mode_threshold"`
	MaxContentBytes   int           `yaml:"max_content_bytes"`
}

type BudgetConfig struct {
	OutputCeiling int `yaml:"output_ceiling"`
	MinUseful     int `yaml:"min_useful"`
	ActivityLimit int `yaml:"activity_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "stackdiff.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			DefaultTenant: "default",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Diff: DiffConfig{
			Timeout:           time.Second,
			LineModeThreshold: 10_000,
			MaxContentBytes:   50 * 1024,
		},
		Budget: BudgetConfig{
			OutputCeiling: 20_000,
			MinUseful:     200,
			ActivityLimit: 500,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STACKDIFF_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("STACKDIFF_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("STACKDIFF_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STACKDIFF_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("STACKDIFF_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STACKDIFF_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STACKDIFF_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("STACKDIFF_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("STACKDIFF_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STACKDIFF_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if timeout := os.Getenv("STACKDIFF_DIFF_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STACKDIFF_DIFF_TIMEOUT: %w", err)
		}
		cfg.Diff.Timeout = d
	}
	if ceiling := os.Getenv("STACKDIFF_OUTPUT_CEILING"); ceiling != "" {
		v, err := strconv.Atoi(ceiling)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STACKDIFF_OUTPUT_CEILING: %w", err)
		}
		cfg.Budget.OutputCeiling = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	if c.Transport.Mode != "stdio" && c.Transport.Mode != "http" {
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Diff.Timeout < 0 {
		return fmt.Errorf("invalid diff timeout %s", c.Diff.Timeout)
	}
	if c.Budget.OutputCeiling < 0 {
		return fmt.Errorf("invalid output ceiling %d", c.Budget.OutputCeiling)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
