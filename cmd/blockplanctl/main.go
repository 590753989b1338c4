package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/cli"
	"github.com/meltforce/blockplan/internal/config"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/storage"
)

func main() {
	if err := cli.NewRootCmd(load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func load(configPath string) (*cli.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	store, err := storage.Open(context.Background(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	cat := catalog.Load(catalog.Paths{
		Templates:    cfg.Catalog.Templates,
		Exercises:    cfg.Catalog.Exercises,
		Progressions: cfg.Catalog.Progressions,
		WarmUps:      cfg.Catalog.WarmUps,
	}, log)

	return &cli.App{
		Plans:   planner.NewService(store, cat, log),
		Catalog: cat,
		Migrate: func() error { return storage.Migrate(cfg.Database) },
		Close:   func() { _ = store.Close() },
	}, nil
}
