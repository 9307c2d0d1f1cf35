package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Port          string        `yaml:"port"`
	DBURL         string        `yaml:"db_url"`
	APIKey        string        `yaml:"api_key"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
	LogMaxAgeDays int           `yaml:"log_max_age_days"`
}

const (
	defaultPort          = "3000"
	defaultDBURL         = "sqlite://./database.sqlite"
	defaultAPIKey        = "safedrive_secret_key"
	defaultStoreTimeout  = 3 * time.Second
	defaultLogLevel      = "INFO"
	defaultLogMaxAgeDays = 30
)

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. Later sources win.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:          defaultPort,
		DBURL:         defaultDBURL,
		APIKey:        defaultAPIKey,
		StoreTimeout:  defaultStoreTimeout,
		LogLevel:      defaultLogLevel,
		LogMaxAgeDays: defaultLogMaxAgeDays,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := env("PORT"); v != "" {
		cfg.Port = v
	}
	if v := env("DB_URL"); v != "" {
		cfg.DBURL = v
	}
	if v := env("SAFEDRIVE_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := env("STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
		}
		cfg.StoreTimeout = d
	}
	if v := env("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := env("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := env("LOG_MAX_AGE_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_MAX_AGE_DAYS: %w", err)
		}
		cfg.LogMaxAgeDays = n
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("api key must not be empty")
	}
	if strings.TrimSpace(c.DBURL) == "" {
		return errors.New("db url must not be empty")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("store timeout must be positive")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

// ListenAddress returns the address the HTTP server binds to.
func (c Config) ListenAddress() string {
	return ":" + c.Port
}

// GetLogLevel maps the configured level name to a logrus level.
func (c Config) GetLogLevel() log.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
