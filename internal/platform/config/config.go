// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Profile store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
	StoreRedis     = "redis"
)

// Config is the server configuration.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	FirebaseProjectID            string `env:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	ProfileStore    string        `env:"PROFILE_STORE" envDefault:"firestore"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"30s"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"linkhub.db"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisTLS      bool   `env:"REDIS_TLS" envDefault:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the optional dotenv files, then parses the environment.
// Variables already set in the process environment win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.ProfileStore {
	case StoreMemory, StoreFirestore, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown PROFILE_STORE %q", c.ProfileStore)
	}
	if c.ProfileCacheTTL < 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must not be negative, got %s", c.ProfileCacheTTL)
	}
	if c.ProfileStore == StoreSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for the sqlite store")
	}
	if c.ProfileStore == StoreRedis && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required for the redis store")
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}
