package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sonnes/dataserv/config"
	"github.com/sonnes/dataserv/render"
	"github.com/sonnes/dataserv/server"
	"github.com/sonnes/dataserv/tasks"
)

const shutdownGrace = 5 * time.Second

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Level)
	}
	log.SetLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if cfg.PIDFile != "" {
		if err := writePIDFile(cfg.PIDFile); err != nil {
			return err
		}
		defer os.Remove(cfg.PIDFile)
	}

	pool := tasks.NewPool(cfg.RootDir)
	if err := pool.Scan(); err != nil {
		log.Warn("scan input directory", "error", err)
	}

	srv := server.New(cfg, pool, render.New())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error { return pool.Watch(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildConfig layers the optional YAML file over defaults, then applies any
// flag the user set explicitly.
func buildConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("level") {
		cfg.Level = cmd.String("level")
	}
	if cmd.IsSet("no-dirlist") {
		cfg.NoDirList = cmd.Bool("no-dirlist")
	}
	if cmd.IsSet("rootdir") {
		cfg.RootDir = cmd.String("rootdir")
	}
	if cmd.IsSet("read-only") {
		cfg.ReadOnly = cmd.Bool("read-only")
	}
	if cmd.IsSet("markdown") {
		cfg.Markdown = cmd.Bool("markdown")
	}
	if cmd.IsSet("pid-file") {
		cfg.PIDFile = cmd.String("pid-file")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func writePIDFile(path string) error {
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(pid), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}
