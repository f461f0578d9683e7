package storage

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	config := Config{
		User:     "a",
		Password: "b",
		Host:     "c",
		Port:     5432,
		DBName:   "d",
	}
	expected := "postgres://a:b@c:5432/d?sslmode=disable"
	actual := config.DSN()
	require.Equal(t, expected, actual)
}

func TestDSNKeepsSpecialCharacters(t *testing.T) {
	config := Config{
		User:     "o'neil",
		Password: `it's a pass\word @:/?#`,
		Host:     "db.local",
		Port:     6432,
		DBName:   "auto ru",
	}

	cfg, err := pgxpool.ParseConfig(config.DSN())
	require.NoError(t, err)
	require.Equal(t, config.User, cfg.ConnConfig.User)
	require.Equal(t, config.Password, cfg.ConnConfig.Password)
	require.Equal(t, config.Host, cfg.ConnConfig.Host)
	require.Equal(t, config.Port, cfg.ConnConfig.Port)
	require.Equal(t, config.DBName, cfg.ConnConfig.Database)
}

func TestOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig(Config{User: "a", Host: "c", Port: 5432, DBName: "d"}.DSN())
	require.NoError(t, err)

	ConnectionTimeout(7 * time.Second).apply(cfg)
	LogLevel(pgx.LogLevelDebug).apply(cfg)

	require.Equal(t, 7*time.Second, cfg.ConnConfig.ConnectTimeout)
	require.Equal(t, pgx.LogLevel(pgx.LogLevelDebug), cfg.ConnConfig.LogLevel)
}
