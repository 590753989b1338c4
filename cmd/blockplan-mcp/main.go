package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/config"
	"github.com/meltforce/blockplan/internal/mcp"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("server", "", "base URL of a blockplan server, e.g. http://blockplan (remote mode)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote)
		log.Info("remote mode", "server", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		store, err := storage.Open(context.Background(), cfg.Database)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		cat := catalog.Load(catalog.Paths{
			Templates:    cfg.Catalog.Templates,
			Exercises:    cfg.Catalog.Exercises,
			Progressions: cfg.Catalog.Progressions,
			WarmUps:      cfg.Catalog.WarmUps,
		}, log)
		ds = mcp.NewLocal(planner.NewService(store, cat, log), store)
		log.Info("local mode", "driver", cfg.Database.Driver)
	}

	if err := server.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
