// Package config reads seeder settings from the environment
package config

import (
	"errors"
	"fmt"
	"time"

	"autoru-seeder/internal/pipeline"
	"autoru-seeder/internal/storage"
	"github.com/caarlos0/env/v6"
	"github.com/jackc/pgx/v4"
	"github.com/valyala/fastjson"
)

// ErrInvalidVolumes is returned when generation volumes cannot be used
var ErrInvalidVolumes = errors.New("invalid volumes")

// Config defines fields used for parsing from environment variables
type Config struct {
	Postgres storage.Config
	Volumes  pipeline.Volumes `envPrefix:"SEEDER_"`

	// VolumesJSON is a JSON object overriding any of Volumes, e.g. {"users":100,"messages":10}
	VolumesJSON string `env:"SEEDER_VOLUMES_JSON"`

	// DryRun seeds an in-memory store instead of postgres
	DryRun bool `env:"SEEDER_DRY_RUN" envDefault:"false"`
	// Seed of the random source, zero picks a time based seed
	Seed           int64         `env:"SEEDER_SEED" envDefault:"0"`
	ConnectTimeout time.Duration `env:"SEEDER_CONNECT_TIMEOUT" envDefault:"30s"`
	// PgLogLevel is the minimal level of pgx messages: trace, debug, info, warn, error or none
	PgLogLevel string `env:"SEEDER_PG_LOG_LEVEL" envDefault:"warn"`
}

// LogLevel returns PgLogLevel as a pgx.LogLevel
func (c Config) LogLevel() (pgx.LogLevel, error) {
	level, err := pgx.LogLevelFromString(c.PgLogLevel)
	if err != nil {
		return 0, fmt.Errorf("SEEDER_PG_LOG_LEVEL %q: %w", c.PgLogLevel, err)
	}
	return level, nil
}

// Parse reads Config from environment, nil environment means the process environment
func Parse(environment map[string]string) (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, err
	}

	if cfg.VolumesJSON != "" {
		if err := overrideVolumes(&cfg.Volumes, cfg.VolumesJSON); err != nil {
			return Config{}, err
		}
	}

	if err := validateVolumes(cfg.Volumes); err != nil {
		return Config{}, err
	}

	if _, err := cfg.LogLevel(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func volumeFields(v *pipeline.Volumes) map[string]*int {
	return map[string]*int{
		"users":                &v.Users,
		"addresses_per_user":   &v.AddressesPerUser,
		"autos":                &v.Autos,
		"max_ads_per_user":     &v.MaxAdsPerUser,
		"max_reviews_per_user": &v.MaxReviewsPerUser,
		"max_chats_per_user":   &v.MaxChatsPerUser,
		"messages":             &v.Messages,
	}
}

// overrideVolumes sets volumes present in raw JSON object
func overrideVolumes(v *pipeline.Volumes, raw string) error {
	if err := fastjson.Validate(raw); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrInvalidVolumes, err)
	}

	var p fastjson.Parser
	value, err := p.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVolumes, err)
	}

	obj, err := value.Object()
	if err != nil {
		return fmt.Errorf("%w: JSON must be an object", ErrInvalidVolumes)
	}

	fields := volumeFields(v)
	obj.Visit(func(key []byte, item *fastjson.Value) {
		if err != nil {
			return
		}

		field, ok := fields[string(key)]
		if !ok {
			err = fmt.Errorf("%w: unknown field %q", ErrInvalidVolumes, key)
			return
		}

		if item.Type() != fastjson.TypeNumber {
			err = fmt.Errorf("%w: field %q must be a number", ErrInvalidVolumes, key)
			return
		}

		n, intErr := item.Int()
		if intErr != nil {
			err = fmt.Errorf("%w: field %q must be an integer", ErrInvalidVolumes, key)
			return
		}
		*field = n
	})

	return err
}

func validateVolumes(v pipeline.Volumes) error {
	for name, field := range volumeFields(&v) {
		if *field < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidVolumes, name)
		}
	}
	return nil
}
