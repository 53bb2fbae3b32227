package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Chinwer/ThssDB/internal"
	"github.com/Chinwer/ThssDB/internal/sql/executor"
	"github.com/Chinwer/ThssDB/internal/storage/sqlite"
	"github.com/Chinwer/ThssDB/server/thssdbwire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "thssdb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("thssdb-server", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "YAML config file")
	fs.String("addr", "", "listen address (server.addr)")
	fs.String("data-dir", "", "directory holding the database files (storage.workdir)")
	fs.String("mode", "", `storage mode: "file" or "memory" (storage.mode)`)
	fs.Bool("debug", false, "debug logging (server.debug)")
	fs.Duration("idle-timeout", 0, "close connections idle this long (server.idle_timeout)")
	_ = fs.Parse(os.Args[1:])

	v := internal.NewViper()
	for key, flag := range map[string]string{
		"server.addr":         "addr",
		"storage.workdir":     "data-dir",
		"storage.mode":        "mode",
		"server.debug":        "debug",
		"server.idle_timeout": "idle-timeout",
	} {
		// only flags given on the command line override file and env
		if f := fs.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := internal.LoadConfigFrom(v, *cfgPath)
	if err != nil {
		return err
	}

	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	store, err := sqlite.NewStore(sqlite.Mode(cfg.Storage.Mode), cfg.Storage.Workdir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		"app", cfg.AppName,
		"addr", cfg.Server.Addr,
		"mode", cfg.Storage.Mode,
		"workdir", cfg.Storage.Workdir,
	)
	return thssdbwire.Run(ctx, thssdbwire.ServerConfig{
		Addr:        cfg.Server.Addr,
		IdleTimeout: cfg.Server.IdleTimeout,
		Logger:      logger,
	}, func() executor.Manager {
		return store.Session()
	})
}
