// Package storage persists week plans and player logs in Postgres or SQLite.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/blockplan/internal/config"
	"github.com/meltforce/blockplan/internal/plan"
)

// Store is implemented by DB and SQLite. Reads that find nothing return (nil, nil).
type Store interface {
	GetWeekPlan(ctx context.Context, id string) (*plan.WeekPlan, error)
	UpsertWeekPlan(ctx context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error)
	DeleteWeekPlan(ctx context.Context, id string) (bool, error)
	ListWeekPlans(ctx context.Context) ([]plan.WeekPlan, error)
	ListWeekPlansByPlayer(ctx context.Context, playerID string) ([]plan.WeekPlan, error)
	GetPlayerLog(ctx context.Context, id string) (*plan.PlayerLog, error)
	UpsertPlayerLog(ctx context.Context, id string, entries plan.Entries, updatedAt time.Time) (*plan.PlayerLog, error)
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)

// Migrate applies pending migrations for the configured driver.
func Migrate(cfg config.DatabaseConfig) error {
	switch cfg.Driver {
	case config.DriverPostgres:
		return RunMigrations(cfg.DSN())
	case config.DriverSQLite:
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return err
		}
		return s.Close()
	}
	return fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// Open migrates and connects the configured store.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return New(ctx, dsn)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Path)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
