// Package config loads dashboard settings from defaults, an optional config file,
// a .env file and DASHBOARD_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Addr            string        `mapstructure:"addr"`
	CookieName      string        `mapstructure:"cookie_name"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Backend struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Session configures where credentials are kept.
// Store is one of memory, redis, postgres, sqlite or mysql.
type Session struct {
	Store       string        `mapstructure:"store"`
	StorageKey  string        `mapstructure:"storage_key"`
	TTL         time.Duration `mapstructure:"ttl"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Database struct {
	URL string `mapstructure:"url"`
}

type UI struct {
	Language string `mapstructure:"language"`
	Currency string `mapstructure:"currency"`
}

// RateLimit bounds login attempts per client IP.
type RateLimit struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

type Config struct {
	Server    Server    `mapstructure:"server"`
	Backend   Backend   `mapstructure:"backend"`
	Session   Session   `mapstructure:"session"`
	Redis     Redis     `mapstructure:"redis"`
	Database  Database  `mapstructure:"database"`
	UI        UI        `mapstructure:"ui"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
}

var stores = map[string]bool{
	"memory":   true,
	"redis":    true,
	"postgres": true,
	"sqlite":   true,
	"mysql":    true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cookie_name", "dashboard_session")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.storage_key", "token")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.idle_timeout", 30*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.url", "")

	v.SetDefault("ui.language", "fr")
	v.SetDefault("ui.currency", "FCFA")

	v.SetDefault("ratelimit.per_second", 1.0)
	v.SetDefault("ratelimit.burst", 3)
}

// Load reads the configuration. envFile and configFile may be empty.
// A missing .env file is not an error; a missing explicit config file is.
func Load(envFile, configFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The SQL store shares DATABASE_URL with the rest of the deployment.
	_ = v.BindEnv("database.url", "DASHBOARD_DATABASE_URL", "DATABASE_URL")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if !stores[c.Session.Store] {
		return fmt.Errorf("unknown session.store %q", c.Session.Store)
	}
	if c.Session.StorageKey == "" {
		return errors.New("session.storage_key is required")
	}
	switch c.Session.Store {
	case "postgres", "mysql", "sqlite":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the %s store", c.Session.Store)
		}
	}
	return nil
}
