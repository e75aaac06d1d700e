package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment overrides. A double underscore
// separates nesting levels: CAMPUS_MAIL__HOST sets mail.host.
const EnvPrefix = "CAMPUS_"

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Mail     MailConfig     `koanf:"mail"`
	Seed     SeedConfig     `koanf:"seed"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	AllowedOrigin   string        `koanf:"allowed_origin" validate:"required"`
	RequestIPHeader string        `koanf:"request_ip_header"`
	RateLimitPerSec float64       `koanf:"rate_limit_per_sec"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `koanf:"driver" validate:"oneof=postgres sqlite"`
	DSN                    string `koanf:"dsn" validate:"required"`
	MaxOpenConns           int    `koanf:"max_open_conns"`
	MaxIdleConns           int    `koanf:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `koanf:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `koanf:"auto_migrate"`
}

// MailConfig holds the SMTP relay used for college addition requests.
type MailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from" validate:"omitempty,email"`
	To       string        `koanf:"to" validate:"omitempty,email"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Enabled reports whether enough is configured to reach a relay.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != "" && m.To != ""
}

// SeedConfig describes where the college catalogue is imported from.
type SeedConfig struct {
	Source    string            `koanf:"source"`
	HTTPProxy string            `koanf:"http_proxy" validate:"omitempty,url"`
	Headers   map[string]string `koanf:"headers"`
	Timeout   time.Duration     `koanf:"timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `koanf:"file"`
}

var validate = validator.New()

// Load reads the configuration. Layers, lowest precedence first: an optional
// .env next to the config file (or in the working directory), the YAML file
// at path if it exists, then CAMPUS_-prefixed environment variables.
func Load(path string) (*Config, error) {
	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	// Missing .env is fine.
	_ = godotenv.Load(envFile)

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = "http://localhost:3000"
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.Timeout <= 0 {
		cfg.Mail.Timeout = 15 * time.Second
	}
	// The relay account doubles as the administrator mailbox unless told otherwise.
	if cfg.Mail.From == "" && strings.Contains(cfg.Mail.Username, "@") {
		cfg.Mail.From = cfg.Mail.Username
	}
	if cfg.Mail.To == "" {
		cfg.Mail.To = cfg.Mail.From
	}

	if cfg.Seed.Timeout <= 0 {
		cfg.Seed.Timeout = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
