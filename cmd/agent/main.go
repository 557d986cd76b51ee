package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kafkapulse/kafkapulse/internal/config"
	"github.com/kafkapulse/kafkapulse/internal/normalize"
	"github.com/kafkapulse/kafkapulse/internal/poller"
	"github.com/kafkapulse/kafkapulse/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("kafkapulse-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"sources", len(cfg.Agent.Sources),
		"poll_interval", cfg.Agent.PollInterval,
		"storage", cfg.Storage.Backend,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.New(cfg.Storage, logger)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Build one poller per source from the initial config. Hot-reload logs
	// only; rebuilding pollers on reload is a later phase.
	type pipeline struct {
		src config.Source
		p   poller.Poller
	}
	var pipelines []pipeline
	for _, src := range cfg.Agent.Sources {
		p, err := poller.New(src)
		if err != nil {
			slog.Error("skipping source — could not build poller", "source", src.ID, "err", err)
			continue
		}
		pipelines = append(pipelines, pipeline{src: src, p: p})
		slog.Info("registered source", "id", src.ID, "mode", src.Mode, "endpoint", src.Endpoint)
	}

	if len(pipelines) == 0 {
		slog.Warn("no sources configured — agent will idle")
	}

	// Watch config file for hot-reload (logs only in this phase).
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded", "sources", len(updated.Agent.Sources))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Retention sweep: hourly, only when a retention window is configured.
	if cfg.Storage.Retention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-ticker.C:
					if _, err := db.Sweep(ctx, t.Add(-cfg.Storage.Retention)); err != nil {
						slog.Warn("retention sweep failed", "err", err)
					}
				}
			}
		}()
	}

	engine := normalize.NewEngine(logger)

	// Poll loop: each tick, fetch every source, normalize the payload into
	// one record batch, and persist it. Per-source failures skip that source
	// for the cycle and never stop the loop.
	go func() {
		ticker := time.NewTicker(cfg.Agent.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				for _, pl := range pipelines {
					payload, mode, err := pl.p.Poll(ctx)
					if err != nil {
						slog.Warn("poll failed", "source", pl.src.ID, "err", err)
						continue
					}
					recs, err := engine.Normalize(mode, payload, t)
					if err != nil {
						slog.Warn("normalize failed", "source", pl.src.ID, "err", err)
						continue
					}
					if len(recs) == 0 {
						continue
					}
					if err := db.Save(ctx, recs); err != nil {
						slog.Error("persist failed", "source", pl.src.ID, "err", err)
						continue
					}
					slog.Debug("batch persisted", "source", pl.src.ID, "records", len(recs))
				}
			}
		}
	}()

	<-ctx.Done()
	slog.Info("kafkapulse-agent shutting down")
}
