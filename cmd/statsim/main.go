package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statcore/internal/config"
	"github.com/udisondev/statcore/internal/db"
	"github.com/udisondev/statcore/internal/event"
	"github.com/udisondev/statcore/internal/journal"
	"github.com/udisondev/statcore/internal/scenario"
	"github.com/udisondev/statcore/internal/service"
)

const ConfigPath = "config/statsim.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("STATCORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("statsim starting",
		"log_level", cfg.LogLevel,
		"stats", len(cfg.Blueprint.Stats),
		"vitals", len(cfg.Blueprint.Vitals),
		"tracks", len(cfg.Blueprint.Tracks))

	script := scenario.Demo()
	if p := os.Getenv("STATCORE_SCRIPT"); p != "" {
		if script, err = scenario.LoadScript(p); err != nil {
			return fmt.Errorf("loading script: %w", err)
		}
	}

	bus := event.NewBus()
	bus.Subscribe(event.LogSink(slog.Default().With("component", "events")))

	if cfg.Journal.Path != "" {
		store, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer store.Close()
		bus.Subscribe(store.Handler(ctx))
		slog.Info("event journal enabled", "path", cfg.Journal.Path)
	}

	var snapshots *db.SnapshotRepository
	if cfg.Database.Enabled {
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		snapshots = database.Snapshots()
		slog.Info("database connected")
	}

	reg := service.NewRegistry(cfg.Blueprint, cfg.Engine, bus)
	runner := scenario.NewRunner(reg, service.NewStatService(reg), service.NewLevelingService(reg))

	if snapshots != nil {
		if err := restoreSnapshots(ctx, reg, snapshots, script.Entities); err != nil {
			return err
		}
	}

	report, err := runner.Run(ctx, script)
	if err != nil {
		return fmt.Errorf("running scenario: %w", err)
	}
	for _, er := range report.Entities {
		slog.Info("entity done", "entity", er.ID, "applied", er.Applied, "failed", len(er.Failures))
	}

	if snapshots != nil {
		if err := saveSnapshots(ctx, reg, snapshots); err != nil {
			return err
		}
	}
	return nil
}

// restoreSnapshots spawns the script entities and loads any stored state.
func restoreSnapshots(ctx context.Context, reg *service.Registry, repo *db.SnapshotRepository, ids []string) error {
	for _, id := range ids {
		snap, err := repo.Load(ctx, id)
		if errors.Is(err, db.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if err := reg.Spawn(id); err != nil {
			return err
		}
		if err := reg.Restore(snap); err != nil {
			return fmt.Errorf("restoring %s: %w", id, err)
		}
		slog.Info("entity restored", "entity", id, "taken_at", snap.TakenAt)
	}
	return nil
}

// saveSnapshots persists every registered entity concurrently.
func saveSnapshots(ctx context.Context, reg *service.Registry, repo *db.SnapshotRepository) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range reg.IDs() {
		g.Go(func() error {
			snap, err := reg.Snapshot(id)
			if err != nil {
				return err
			}
			if err := repo.Save(ctx, snap); err != nil {
				return fmt.Errorf("saving %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("saving snapshots: %w", err)
	}
	slog.Info("snapshots saved", "entities", reg.Len())
	return nil
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
