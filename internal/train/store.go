package train

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/database"
)

// Store kinds accepted by OpenStore.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// StoreConfig selects and configures the backing train store.
type StoreConfig struct {
	// Kind is one of StoreMemory, StorePostgres or StoreSQLite.
	// Default: StoreMemory
	Kind string

	// SQLitePath is the database file for StoreSQLite.
	// Default: trainreroute.db
	SQLitePath string

	// Postgres configures the pool for StorePostgres.
	Postgres database.Config

	// SeedFile, when set, is loaded into the store after opening.
	SeedFile string

	Logger zerolog.Logger
}

// StoreConfigFromEnv reads TRAIN_STORE, SQLITE_DATABASE, TRAINS_SEED_FILE
// and the database package's variables.
func StoreConfigFromEnv(logger zerolog.Logger) StoreConfig {
	return StoreConfig{
		Kind:       os.Getenv("TRAIN_STORE"),
		SQLitePath: os.Getenv("SQLITE_DATABASE"),
		Postgres:   database.ConfigFromEnv(),
		SeedFile:   os.Getenv("TRAINS_SEED_FILE"),
		Logger:     logger,
	}
}

// OpenStore opens the configured store, creates its schema and applies the
// seed file. The returned close function releases the store's resources.
func OpenStore(ctx context.Context, cfg StoreConfig) (Repository, func(), error) {
	repo, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedFile != "" {
		trains, err := LoadSeedFile(cfg.SeedFile)
		if err == nil {
			err = Seed(ctx, repo, trains)
		}
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		cfg.Logger.Info().
			Str("seed_file", cfg.SeedFile).
			Int("trains", len(trains)).
			Msg("train store seeded")
	}

	return repo, closeFn, nil
}

func openStore(ctx context.Context, cfg StoreConfig) (Repository, func(), error) {
	switch cfg.Kind {
	case "", StoreMemory:
		cfg.Logger.Info().Str("store", StoreMemory).Msg("using in-memory train store")
		return NewInMemoryRepository(), func() {}, nil

	case StoreSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "trainreroute.db"
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		repo := NewSQLiteRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		cfg.Logger.Info().Str("store", StoreSQLite).Str("path", path).Msg("sqlite train store opened")
		return repo, func() { _ = db.Close() }, nil

	case StorePostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		repo := NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		cfg.Logger.Info().
			Str("store", StorePostgres).
			Str("host", cfg.Postgres.Host).
			Str("database", cfg.Postgres.Database).
			Msg("postgres train store connected")
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown train store %q", cfg.Kind)
	}
}
