// Copyright (c) 2025 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFromMap tests configuration loading from an in-memory map.
func TestLoadFromMap(t *testing.T) {
	t.Parallel()

	t.Run("Loads all provided values correctly", func(t *testing.T) {
		t.Parallel()

		testEnv := map[string]string{
			"JWT_PUBLIC_KEY":             "test-public-key",
			"DB_TYPE":                    "postgresql",
			"POSTGRES_HOST":              "test-host",
			"POSTGRES_PORT":              "5433",
			"POSTGRES_USERNAME":          "test-user",
			"POSTGRES_PASSWORD":          "test-pass",
			"POSTGRES_DATABASE":          "test-db",
			"POSTGRES_MAX_OPEN_CONNS":    "55",
			"POSTGRES_CONN_MAX_LIFETIME": "321",
			"SERVER_PORT":                "9090",
			"DEBUG":                      "true",
			"CACHE_BACKEND":              "redis",
			"REDIS_CLUSTER_ADDRESSES":    "a:6379, b:6379",
			"FEED_COUNTER_TTL":           "30s",
			"FEED_INVALIDATION_RETRIES":  "4",
		}

		cfg, err := LoadFromMap(testEnv)
		require.NoError(t, err)

		require.Equal(t, "test-public-key", cfg.JWT.PublicKey)
		require.Equal(t, "test-host", cfg.Database.Postgres.Host)
		require.Equal(t, 5433, cfg.Database.Postgres.Port)
		require.Equal(t, "test-user", cfg.Database.Postgres.Username)
		require.Equal(t, "test-pass", cfg.Database.Postgres.Password)
		require.Equal(t, "test-db", cfg.Database.Postgres.Database)
		require.Equal(t, 55, cfg.Database.Postgres.MaxOpenConns)
		require.Equal(t, 321*time.Second, cfg.Database.Postgres.ConnMaxLifetime)
		require.Equal(t, 9090, cfg.Server.Port)
		require.Equal(t, ":9090", cfg.Server.Addr())
		require.True(t, cfg.Server.Debug)
		require.Equal(t, "redis", cfg.Cache.Backend)
		require.Equal(t, []string{"a:6379", "b:6379"}, cfg.Cache.Redis.Cluster.Addresses)
		require.Equal(t, 30*time.Second, cfg.Feeds.CounterTTL)
		require.Equal(t, 4, cfg.Feeds.InvalidationRetries)
	})

	t.Run("Applies defaults for missing values", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": "test-public-key"})
		require.NoError(t, err)

		require.Equal(t, 8080, cfg.Server.Port)
		require.False(t, cfg.Server.Debug)
		require.Equal(t, "postgresql", cfg.Database.Type)
		require.True(t, cfg.Database.AutoMigrate)
		require.Equal(t, "memory", cfg.Cache.Backend)
		require.Equal(t, "telar:", cfg.Cache.Prefix)
		require.Equal(t, 600*time.Second, cfg.Feeds.CounterTTL)
		require.Equal(t, 2*time.Second, cfg.Feeds.InvalidationTimeout)
	})

	t.Run("Ignores unparseable values", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadFromMap(map[string]string{
			"JWT_PUBLIC_KEY":   "test-public-key",
			"SERVER_PORT":      "not-a-number",
			"FEED_COUNTER_TTL": "ten minutes",
		})
		require.NoError(t, err)
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, DefaultCounterTTL, cfg.Feeds.CounterTTL)
	})

	t.Run("Fails when required values are missing", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFromMap(map[string]string{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "JWT_PUBLIC_KEY is required")
	})

	t.Run("Rejects unknown cache backend", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFromMap(map[string]string{
			"JWT_PUBLIC_KEY": "test-public-key",
			"CACHE_BACKEND":  "memcached",
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "CACHE_BACKEND")
	})

	t.Run("Rejects invalidation settings that could stall mutations", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name string
			env  map[string]string
			want string
		}{
			{"negative retries", map[string]string{"FEED_INVALIDATION_RETRIES": "-1"}, "FEED_INVALIDATION_RETRIES"},
			{"too many retries", map[string]string{"FEED_INVALIDATION_RETRIES": "1000"}, "FEED_INVALIDATION_RETRIES"},
			{"zero timeout", map[string]string{"FEED_INVALIDATION_TIMEOUT": "0s"}, "FEED_INVALIDATION_TIMEOUT"},
			{"negative timeout", map[string]string{"FEED_INVALIDATION_TIMEOUT": "-2s"}, "FEED_INVALIDATION_TIMEOUT"},
		}
		for _, tc := range cases {
			tc.env["JWT_PUBLIC_KEY"] = "test-public-key"
			_, err := LoadFromMap(tc.env)
			require.Error(t, err, tc.name)
			require.Contains(t, err.Error(), tc.want, tc.name)
		}

		cfg, err := LoadFromMap(map[string]string{
			"JWT_PUBLIC_KEY":            "test-public-key",
			"FEED_INVALIDATION_RETRIES": "0",
		})
		require.NoError(t, err)
		require.Equal(t, 0, cfg.Feeds.InvalidationRetries)
	})
}
