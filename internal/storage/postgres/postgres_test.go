package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/srdcrawl/internal/config"
	"github.com/cory-johannsen/srdcrawl/internal/storage/postgres"
)

func unreachable() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:            "127.0.0.1",
		Port:            1,
		User:            "srd",
		Password:        "srd",
		Name:            "srd",
		SSLMode:         "disable",
		MaxConns:        1,
		MinConns:        0,
		MaxConnLifetime: time.Minute,
		HealthTimeout:   2 * time.Second,
	}
}

func TestOpen_UnhealthyDatabase(t *testing.T) {
	start := time.Now()
	repo, closeStore, err := postgres.Open(context.Background(), unreachable())
	require.Error(t, err)
	assert.Nil(t, repo)
	assert.Nil(t, closeStore)
	assert.Contains(t, err.Error(), "not healthy within 2s")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestNewPool_BadDSN(t *testing.T) {
	cfg := unreachable()
	cfg.SSLMode = "sometimes"
	_, err := postgres.NewPool(context.Background(), cfg)
	assert.ErrorContains(t, err, "parsing database config")
}
