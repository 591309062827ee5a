package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration, loaded from YAML with environment
// overrides for deploy-time values.
type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	// CryptoSecret signs session tokens. Its absence is fatal for token
	// operations only; the CRYPTO_SECRET env var takes precedence.
	CryptoSecret string `yaml:"crypto_secret"`
}

// Load reads configuration from path (optional) and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr: ":9000",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("CRYPTO_SECRET"); v != "" {
		c.Auth.CryptoSecret = v
	}
}
