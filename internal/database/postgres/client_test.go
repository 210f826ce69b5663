// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qolzam/telar/apps/feeds/internal/platform/config"
)

func TestBuildConnectionString(t *testing.T) {
	cfg := &config.PostgreSQLConfig{
		Host:           "db",
		Port:           5433,
		Username:       "feeds",
		Password:       "secret",
		Database:       "telar_feeds",
		ConnectTimeout: 5,
	}

	connStr := buildConnectionString(cfg)
	assert.Equal(t, "host=db port=5433 dbname=telar_feeds user=feeds password=secret sslmode=disable connect_timeout=5", connStr)

	cfg.Username = ""
	cfg.Password = ""
	cfg.SSLMode = "require"
	cfg.ConnectTimeout = 0
	assert.Equal(t, "host=db port=5433 dbname=telar_feeds sslmode=require", buildConnectionString(cfg))
}

func TestNewClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := &config.PostgreSQLConfig{
		Host:            "localhost",
		Port:            5432,
		Username:        "postgres",
		Password:        "postgres",
		Database:        "telar_feeds_test",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 300 * time.Second,
		ConnectTimeout:  10,
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer client.Close()

	require.NoError(t, client.Ping(ctx))
	require.NotNil(t, client.DB())
}
