package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/config"
	"github.com/emurenMRz/bounceview/internal/logging"
	"github.com/emurenMRz/bounceview/internal/mailbox"
	"github.com/emurenMRz/bounceview/internal/server"
	"github.com/emurenMRz/bounceview/internal/suppress"
)

func main() {
	var (
		configPath string
		path       string
		listen     string
		storePath  string
	)
	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.StringVar(&path, "path", "", "path to mbox files (overrides mailbox.dir)")
	flag.StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	flag.StringVar(&storePath, "store", "", "suppression database (overrides store.path)")
	flag.Parse()

	if err := run(configPath, path, listen, storePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, path, listen, storePath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if path != "" {
		cfg.Mailbox.Dir = path
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	logger := logging.New(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := server.Options{
		Handler:   bounce.New(bounce.WithLogger(logger)),
		Mailboxes: mailbox.New(cfg.Mailbox.Dir, logger),
		Registry:  reg,
		Logger:    logger,
	}
	if cfg.Store.Path != "" {
		store, err := suppress.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Suppressions = store
	}

	logger.Info("starting", "mailbox_dir", cfg.Mailbox.Dir, "store", cfg.Store.Path)
	return server.New(opts).ListenAndServe(ctx, cfg.Server.Listen)
}
