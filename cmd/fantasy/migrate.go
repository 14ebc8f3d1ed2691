package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fantasy/internal/storage/postgres"
	"github.com/cory-johannsen/fantasy/internal/storage/sqlite"
)

var (
	migrateDirection string
	migrateSteps     int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDirection, "direction", "up", "migration direction: up or down")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of steps (0 = all)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	switch a.cfg.Storage.Driver {
	case "sqlite":
		db, err := sqlite.OpenDB(a.cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		if m, err = sqlite.NewMigrator(db); err != nil {
			_ = db.Close()
			return err
		}
	case "postgres":
		if m, err = postgres.NewMigrator(a.cfg.Database.DSN()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("the %s store has no schema to migrate", a.cfg.Storage.Driver)
	}
	defer m.Close()

	switch migrateDirection {
	case "up":
		if migrateSteps > 0 {
			err = m.Steps(migrateSteps)
		} else {
			err = m.Up()
		}
	case "down":
		if migrateSteps > 0 {
			err = m.Steps(-migrateSteps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", migrateDirection)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	elapsed := time.Since(start)
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(cmd.OutOrStdout(), "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s to version=%d dirty=%v [%s]\n", migrateDirection, version, dirty, elapsed)
	}
	return nil
}
