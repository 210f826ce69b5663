package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the feeds service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	JWT      JWTConfig      `json:"jwt"`
	Cache    CacheConfig    `json:"cache"`
	Feeds    FeedsConfig    `json:"feeds"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type        string           `json:"type"`
	Postgres    PostgreSQLConfig `json:"postgres"`
	AutoMigrate bool             `json:"autoMigrate"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnectTimeout  int           `json:"connectTimeout"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled    bool        `json:"enabled"`
	Backend    string      `json:"backend"`
	Prefix     string      `json:"prefix"`
	MaxEntries int         `json:"maxEntries"`
	Redis      RedisConfig `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
	Cluster      ClusterConfig `json:"cluster"`
}

// ClusterConfig holds Redis cluster configuration
type ClusterConfig struct {
	Enabled   bool     `json:"enabled"`
	Addresses []string `json:"addresses"`
}

// FeedsConfig holds the counter cache policy
type FeedsConfig struct {
	// CounterTTL bounds how long a cached like/comment count may be served.
	CounterTTL          time.Duration `json:"counterTtl"`
	InvalidationTimeout time.Duration `json:"invalidationTimeout"`
	InvalidationRetries int           `json:"invalidationRetries"`
}

const (
	// DefaultCounterTTL is the lifetime of a cached feed counter
	DefaultCounterTTL = 600 * time.Second
	// MaxInvalidationRetries bounds the retries of one cache delete
	MaxInvalidationRetries = 10
)

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then the .env file, then defaults.
func LoadFromEnv() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	envPaths := []string{".env", "apps/feeds/.env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(os.Getenv)
}

// LoadFromMap loads configuration from an in-memory map.
// Used by tests to exercise configuration without touching the process environment.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) string {
		return envMap[key]
	})
}

func load(lookup func(string) string) (*Config, error) {
	e := envReader{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:      e.getString("HOST", "localhost"),
			Port:      e.getInt("SERVER_PORT", 8080),
			BaseRoute: e.getString("BASE_ROUTE", "/api"),
			WebDomain: e.getString("WEB_DOMAIN", "http://localhost:3000"),
			Debug:     e.getBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type:        e.getString("DB_TYPE", "postgresql"),
			AutoMigrate: e.getBool("DB_AUTO_MIGRATE", true),
			Postgres: PostgreSQLConfig{
				Host:            e.getString("POSTGRES_HOST", "localhost"),
				Port:            e.getInt("POSTGRES_PORT", 5432),
				Username:        e.getString("POSTGRES_USERNAME", ""),
				Password:        e.getString("POSTGRES_PASSWORD", ""),
				Database:        e.getString("POSTGRES_DATABASE", "telar_feeds"),
				SSLMode:         e.getString("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    e.getInt("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    e.getInt("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(e.getInt("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
				ConnectTimeout:  e.getInt("POSTGRES_CONNECT_TIMEOUT", 10),
			},
		},
		JWT: JWTConfig{
			PublicKey: e.getString("JWT_PUBLIC_KEY", ""),
		},
		Cache: CacheConfig{
			Enabled:    e.getBool("CACHE_ENABLED", true),
			Backend:    e.getString("CACHE_BACKEND", "memory"),
			Prefix:     e.getString("CACHE_PREFIX", "telar:"),
			MaxEntries: e.getInt("CACHE_MAX_ENTRIES", 100000),
			Redis: RedisConfig{
				Address:      e.getString("REDIS_ADDRESS", "localhost:6379"),
				Password:     e.getString("REDIS_PASSWORD", ""),
				Database:     e.getInt("REDIS_DATABASE", 0),
				PoolSize:     e.getInt("REDIS_POOL_SIZE", 10),
				MinIdleConns: e.getInt("REDIS_MIN_IDLE_CONNS", 5),
				MaxConnAge:   time.Duration(e.getInt("REDIS_MAX_CONN_AGE", 300)) * time.Second,
				Cluster: ClusterConfig{
					Enabled:   e.getBool("REDIS_CLUSTER_ENABLED", false),
					Addresses: e.getList("REDIS_CLUSTER_ADDRESSES", []string{"localhost:6379"}),
				},
			},
		},
		Feeds: FeedsConfig{
			CounterTTL:          e.getDuration("FEED_COUNTER_TTL", DefaultCounterTTL),
			InvalidationTimeout: e.getDuration("FEED_INVALIDATION_TIMEOUT", 2*time.Second),
			InvalidationRetries: e.getInt("FEED_INVALIDATION_RETRIES", 2),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validDbTypes := []string{"postgresql"}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.Feeds.CounterTTL <= 0 {
		errors = append(errors, "FEED_COUNTER_TTL must be positive")
	}

	if c.Feeds.InvalidationTimeout <= 0 {
		errors = append(errors, "FEED_INVALIDATION_TIMEOUT must be positive")
	}

	if c.Feeds.InvalidationRetries < 0 || c.Feeds.InvalidationRetries > MaxInvalidationRetries {
		errors = append(errors, fmt.Sprintf("FEED_INVALIDATION_RETRIES must be between 0 and %d", MaxInvalidationRetries))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// envReader reads typed values with defaults; unparseable values fall back to the default
type envReader struct {
	lookup func(string) string
}

func (e envReader) getString(key, defaultValue string) string {
	if value := e.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := e.lookup(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e.lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (e envReader) getList(key string, defaultValue []string) []string {
	value := e.lookup(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
