package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/session"
	"github.com/cory-johannsen/fantasy/internal/observability"
	"github.com/cory-johannsen/fantasy/internal/storage"
	"github.com/cory-johannsen/fantasy/internal/storage/memory"
	"github.com/cory-johannsen/fantasy/internal/storage/postgres"
	"github.com/cory-johannsen/fantasy/internal/storage/sqlite"
)

var opts struct {
	configPath string
}

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"store":   "storage.driver",
	"seed":    "game.seed",
	"content": "content.dir",
	"color":   "game.color",
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

// loadApp reads .env, the config file, FANTASY_ variables and flags, in rising priority.
func loadApp(cmd *cobra.Command) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := config.NewViper()
	if opts.configPath != "" {
		v.SetConfigFile(opts.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) catalog() (*catalog.Catalog, error) {
	if a.cfg.Content.Dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(a.cfg.Content.Dir)
}

// openStore opens the configured store, migrated and seeded with cat.
func (a *app) openStore(ctx context.Context, cat *catalog.Catalog) (storage.Store, error) {
	start := time.Now()
	var (
		store storage.Store
		err   error
	)
	switch a.cfg.Storage.Driver {
	case "sqlite":
		store, err = sqlite.Open(a.cfg.Storage.SQLitePath)
	case "postgres":
		store, err = postgres.OpenStore(ctx, a.cfg.Database)
	case "memory":
		store = memory.New()
	default:
		err = fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Storage.Driver, err)
	}
	if err := store.SeedCatalog(ctx, cat); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}
	a.logger.Info("store ready",
		zap.String("driver", a.cfg.Storage.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)
	return store, nil
}

// newGame loads content, opens the store and wires a session.Game.
// The returned close func releases the store.
func (a *app) newGame(ctx context.Context) (*session.Game, func(), error) {
	cat, err := a.catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("loading content: %w", err)
	}
	rules, err := session.RulesFromConfig(a.cfg.Rules)
	if err != nil {
		return nil, nil, err
	}
	store, err := a.openStore(ctx, cat)
	if err != nil {
		return nil, nil, err
	}
	roller := dice.NewLoggedRoller(dice.NewSource(a.cfg.Game.Seed), a.logger)
	game := session.NewGame(cat, store, roller, rules, session.NewManager(), a.logger)
	return game, func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("closing store", zap.Error(err))
		}
		_ = a.logger.Sync()
	}, nil
}
