package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/worldsim/internal/config"
	"github.com/udisondev/worldsim/internal/data"
	"github.com/udisondev/worldsim/internal/db"
	"github.com/udisondev/worldsim/internal/model"
	"github.com/udisondev/worldsim/internal/unitmod"
	"github.com/udisondev/worldsim/internal/world"
)

// finalSaveTimeout bounds the shutdown persist, which runs after ctx is canceled.
const finalSaveTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the world tick loop",
	Long: `Loads unit templates, spawns the configured population, restores
saved modifiers from the database and ticks effects until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), viper.GetString("config"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfgPath string) error {
	cfg, err := config.LoadWorldSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogger(logLevelOverride(cfg.LogLevel))

	slog.Info("worldsim starting",
		"config", cfgPath,
		"tick_interval", cfg.World.TickInterval,
		"workers", cfg.World.Workers)

	if err := data.LoadUnitTemplates(); err != nil {
		return fmt.Errorf("loading unit templates: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	repo := db.NewModifierRepository(database.Pool())
	tickMgr := world.NewTickManager(cfg.World.TickInterval, cfg.World.Workers)

	if err := spawnUnits(ctx, cfg, repo, tickMgr); err != nil {
		return err
	}
	slog.Info("population spawned", "units", tickMgr.Count())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := tickMgr.Start(gctx); err != nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	if cfg.Stats.PersistInterval > 0 {
		g.Go(func() error {
			return persistLoop(gctx, cfg.Stats.PersistInterval, tickMgr, repo)
		})
	}

	err = g.Wait()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
	defer cancel()
	if saveErr := persistAll(saveCtx, tickMgr, repo); saveErr != nil {
		slog.Error("final modifier save failed", "error", saveErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("worldsim stopped")
	return nil
}

// spawnUnits creates the configured population and restores each unit's saved modifiers.
func spawnUnits(ctx context.Context, cfg config.WorldSim, repo *db.ModifierRepository, tickMgr *world.TickManager) error {
	var opts []unitmod.Option
	if cfg.Stats.Ledger {
		opts = append(opts, unitmod.WithLedger())
	}

	ids := world.NewObjectIDGenerator()
	for _, sp := range cfg.World.Spawns {
		tmpl, err := data.GetUnitTemplate(sp.Template)
		if err != nil {
			return fmt.Errorf("spawning: %w", err)
		}
		for range sp.Count {
			u := model.NewUnit(ids.NextNpcID(), tmpl.Name, tmpl, opts...)

			entries, err := repo.Load(ctx, int64(u.ObjectID()))
			if err != nil {
				return fmt.Errorf("loading modifiers: %w", err)
			}
			if err := u.RestoreModifiers(entries); err != nil {
				return fmt.Errorf("restoring unit %d: %w", u.ObjectID(), err)
			}
			tickMgr.Register(u, nil)
		}
	}
	return nil
}

// persistLoop saves permanent modifiers every interval until ctx is canceled.
func persistLoop(ctx context.Context, interval time.Duration, tickMgr *world.TickManager, repo *db.ModifierRepository) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := persistAll(ctx, tickMgr, repo); err != nil {
				slog.Error("periodic modifier save failed", "error", err)
			}
		}
	}
}

// persistAll writes every unit's snapshot; a failed unit does not stop the rest.
func persistAll(ctx context.Context, tickMgr *world.TickManager, repo *db.ModifierRepository) error {
	start := time.Now()
	snaps := tickMgr.Snapshot()

	var errs []error
	for _, s := range snaps {
		if err := repo.Save(ctx, int64(s.ObjectID), s.Entries); err != nil {
			errs = append(errs, fmt.Errorf("unit %d: %w", s.ObjectID, err))
		}
	}

	slog.Debug("modifiers persisted",
		"units", len(snaps),
		"failed", len(errs),
		"duration", time.Since(start))
	return errors.Join(errs...)
}
