package config

import (
	"context"
	"testing"
	"time"

	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Zero(t, cfg.MissedDayTolerance, "a missed day without a lifeline fails the member")
	assert.Equal(t, 48*time.Hour, cfg.ReviewTimeout)
	assert.Equal(t, models.LamportsPerSOL/20, cfg.LifelineCost())
	assert.Equal(t, "habit-pools", cfg.DynamoTables().Pools)
	assert.Equal(t, 3, cfg.ArbiterConfig().MaxFailOpenPerMember)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "dynamodb")
	t.Setenv("DYNAMODB_POOLS_TABLE_NAME", "prod-pools")
	t.Setenv("MISSED_DAY_TOLERANCE", "1")
	t.Setenv("REVIEW_TIMEOUT", "24h")
	t.Setenv("LIFELINE_COST_SOL", "0.25")
	t.Setenv("WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod-pools", cfg.DynamoTables().Pools)
	assert.Equal(t, "habit-pool-members", cfg.DynamoTables().Members)
	assert.Equal(t, models.LamportsPerSOL/4, cfg.LifelineCost())
	sw := cfg.SweeperConfig()
	assert.Equal(t, 1, sw.MissedDayTolerance)
	assert.Equal(t, 24*time.Hour, sw.ReviewTimeout)
	assert.Equal(t, 8, sw.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name, key, value string
	}{
		{"Unknown Backend", "STORAGE_BACKEND", "postgres"},
		{"Negative Tolerance", "MISSED_DAY_TOLERANCE", "-1"},
		{"Fractional Lamport Cost", "LIFELINE_COST_SOL", "0.0000000001"},
		{"Zero Cost", "LIFELINE_COST_SOL", "0"},
		{"Inverted Thresholds", "REJECT_AT_OR_BELOW", "0.7"},
		{"Bad Duration", "SWEEP_INTERVAL", "often"},
		{"No Workers", "WORKERS", "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestOpenStoreMemory(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	store, err := cfg.OpenStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
}
