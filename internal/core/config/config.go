package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	IMDB     IMDBConfig     `koanf:"imdb"`
	Fictions FictionsConfig `koanf:"fictions"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type StoreConfig struct {
	// Type selects the backend: dynamodb | postgres.
	Type string `koanf:"type"`

	// Stage suffixes the table name, e.g. "dev" -> "FichronEvent-dev".
	Stage string `koanf:"stage"`

	Dynamo   DynamoConfig   `koanf:"dynamo"`
	Postgres PostgresConfig `koanf:"postgres"`
}

type DynamoConfig struct {
	// Local targets a fixed endpoint (DynamoDB Local) with static
	// credentials. When false, ambient AWS configuration applies and the
	// remaining fields are ignored.
	Local     bool   `koanf:"local"`
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

type PostgresConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type IMDBConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Timeout string `koanf:"timeout"` // parsed and validated on startup
}

// RequestTimeout parses the configured timeout. Validate has already
// guaranteed it parses.
func (c IMDBConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

type FictionsConfig struct {
	// DatasetsDir optionally overlays fiction datasets from disk on top of
	// the embedded ones. Empty means embedded only.
	DatasetsDir string `koanf:"datasets_dir"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Store.Stage) == "" {
		return fmt.Errorf("store.stage is required")
	}

	switch c.Store.Type {
	case "dynamodb":
		if c.Store.Dynamo.Local {
			if strings.TrimSpace(c.Store.Dynamo.Endpoint) == "" {
				return fmt.Errorf("store.dynamo.endpoint is required when store.dynamo.local is set")
			}
			if strings.TrimSpace(c.Store.Dynamo.Region) == "" {
				return fmt.Errorf("store.dynamo.region is required when store.dynamo.local is set")
			}
		}
	case "postgres":
		if strings.TrimSpace(c.Store.Postgres.DSN) == "" {
			return fmt.Errorf("store.postgres.dsn is required")
		}
		if c.Store.Postgres.MaxOpenConns <= 0 {
			return fmt.Errorf("store.postgres.max_open_conns must be > 0")
		}
		if c.Store.Postgres.MaxIdleConns <= 0 {
			return fmt.Errorf("store.postgres.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported store.type %q (must be dynamodb or postgres)", c.Store.Type)
	}

	if strings.TrimSpace(c.IMDB.BaseURL) == "" {
		return fmt.Errorf("imdb.base_url is required")
	}
	timeout, err := time.ParseDuration(c.IMDB.Timeout)
	if err != nil {
		return fmt.Errorf("invalid imdb.timeout %q: %w", c.IMDB.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("imdb.timeout must be > 0")
	}

	return nil
}

// Load parses config from defaults, then file, then FICHRON_-prefixed env
// vars, and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Defaults favor the out-of-the-box local setup: DynamoDB Local at the
	// docker-compose endpoint with its fixed throwaway credentials.
	defaults := map[string]interface{}{
		"server.port":                   8080,
		"server.host":                   "0.0.0.0",
		"server.mode":                   "release",
		"store.type":                    "dynamodb",
		"store.stage":                   "dev",
		"store.dynamo.local":            true,
		"store.dynamo.endpoint":         "http://db:8000",
		"store.dynamo.region":           "localhost",
		"store.dynamo.access_key":       "S3RVER",
		"store.dynamo.secret_key":       "S3RVER",
		"store.postgres.dsn":            "",
		"store.postgres.max_open_conns": 25,
		"store.postgres.max_idle_conns": 25,
		"store.postgres.auto_migrate":   true,
		"imdb.base_url":                 "https://imdb-api.com",
		"imdb.api_key":                  "",
		"imdb.timeout":                  "10s",
		"fictions.datasets_dir":         "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("FICHRON_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FICHRON_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
