package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"time"

	"autoru-seeder/internal/config"
	"autoru-seeder/internal/generator"
	"autoru-seeder/internal/pipeline"
	"autoru-seeder/internal/storage"
	"autoru-seeder/internal/storage/memory"
	"autoru-seeder/internal/storage/zapadapter"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer logger.Sync()

	runID := xid.New().String()
	sugar := logger.Sugar()
	sugar.Infof("Seeder is starting, run %s", runID)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		sugar.Fatalf("Cannot load .env file: %v", err)
	}

	cfg, err := config.Parse(nil)
	if err != nil {
		sugar.Fatalf("Cannot parse env config: %v", err)
	}

	if err := run(sugar, runID, cfg); err != nil {
		sugar.Errorf("Seeding failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// run seeds the configured store, the store is closed before returning
func run(logger *zap.SugaredLogger, runID string, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = zapadapter.NewContextWithRunID(ctx, runID)

	var store pipeline.Store
	if cfg.DryRun {
		logger.Info("Dry run, rows are kept in memory")
		mem := memory.NewStore(logger)
		defer func() {
			logger.Infof("In-memory tables: %v", mem.Counts())
		}()
		store = mem
	} else {
		level, err := cfg.LogLevel()
		if err != nil {
			return err
		}

		opts := []storage.Option{
			storage.ConnectionTimeout(cfg.ConnectTimeout),
			storage.LogLevel(level),
		}
		pg, err := storage.NewStore(ctx, logger, cfg.Postgres, opts...)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Infof("Using random seed %d", seed)

	faker := gofakeit.New(seed)
	p := pipeline.New(logger, store, generator.New(faker), faker.Rand, cfg.Volumes)

	report, err := p.Run(ctx)
	for _, s := range report.Stages {
		logger.Infof("%-15s %d", s.Name, s.Count)
	}
	if err != nil {
		return err
	}

	logger.Infof("Seeding finished, %d chats with members", report.ChatsDiscovered)

	return nil
}
