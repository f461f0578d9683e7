package config

import (
	"testing"
	"time"

	"autoru-seeder/internal/pipeline"
	"autoru-seeder/internal/storage"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, storage.Config{
		User:     "postgres",
		Password: "postgres",
		Host:     "localhost",
		Port:     5432,
		DBName:   "autoru",
	}, cfg.Postgres)
	require.Equal(t, pipeline.Volumes{
		Users:             5000,
		AddressesPerUser:  2,
		Autos:             7000,
		MaxAdsPerUser:     10,
		MaxReviewsPerUser: 10,
		MaxChatsPerUser:   5,
		Messages:          300,
	}, cfg.Volumes)
	require.False(t, cfg.DryRun)
	require.Zero(t, cfg.Seed)
	require.Equal(t, 30*time.Second, cfg.ConnectTimeout)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	require.Equal(t, pgx.LogLevel(pgx.LogLevelWarn), level)
}

func TestParseEnvironment(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"PG_HOST":                "db",
		"PG_PORT":                "6432",
		"SEEDER_USERS":           "10",
		"SEEDER_MESSAGES":        "0",
		"SEEDER_DRY_RUN":         "true",
		"SEEDER_SEED":            "42",
		"SEEDER_CONNECT_TIMEOUT": "5s",
		"SEEDER_PG_LOG_LEVEL":    "debug",
	})
	require.NoError(t, err)

	require.Equal(t, "db", cfg.Postgres.Host)
	require.Equal(t, uint16(6432), cfg.Postgres.Port)
	require.Equal(t, 10, cfg.Volumes.Users)
	require.Zero(t, cfg.Volumes.Messages)
	require.Equal(t, 7000, cfg.Volumes.Autos)
	require.True(t, cfg.DryRun)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, 5*time.Second, cfg.ConnectTimeout)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	require.Equal(t, pgx.LogLevel(pgx.LogLevelDebug), level)
}

func TestParseMalformedEnvironment(t *testing.T) {
	_, err := Parse(map[string]string{"SEEDER_USERS": "many"})
	require.Error(t, err)

	_, err = Parse(map[string]string{"SEEDER_AUTOS": "-1"})
	require.ErrorIs(t, err, ErrInvalidVolumes)

	_, err = Parse(map[string]string{"SEEDER_PG_LOG_LEVEL": "loud"})
	require.Error(t, err)
}

func TestParseVolumesJSON(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"SEEDER_USERS":        "10",
		"SEEDER_VOLUMES_JSON": `{"users": 100, "max_chats_per_user": 1, "messages": 7}`,
	})
	require.NoError(t, err)

	require.Equal(t, 100, cfg.Volumes.Users)
	require.Equal(t, 1, cfg.Volumes.MaxChatsPerUser)
	require.Equal(t, 7, cfg.Volumes.Messages)
	require.Equal(t, 7000, cfg.Volumes.Autos)
}

func TestParseInvalidVolumesJSON(t *testing.T) {
	cases := map[string]string{
		"malformed":    `{"users": 1`,
		"not object":   `[1, 2]`,
		"unknown":      `{"dealers": 3}`,
		"string":       `{"users": "3"}`,
		"fraction":     `{"users": 1.5}`,
		"negative":     `{"messages": -5}`,
		"null":         `{"autos": null}`,
		"out of range": `{"autos": 1e40}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(map[string]string{"SEEDER_VOLUMES_JSON": raw})
			require.ErrorIs(t, err, ErrInvalidVolumes)
		})
	}
}
