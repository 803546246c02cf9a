package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/rwein/barpoll/internal/config"
	"codeberg.org/rwein/barpoll/internal/cpu"
	"codeberg.org/rwein/barpoll/internal/daemon"
	"codeberg.org/rwein/barpoll/internal/errors"
	"codeberg.org/rwein/barpoll/internal/history"
	"codeberg.org/rwein/barpoll/internal/logger"
	"codeberg.org/rwein/barpoll/internal/pid"
	"codeberg.org/rwein/barpoll/internal/transport"
	"github.com/spf13/pflag"
)

const daemonName = "cpu_load"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <event-name> <poll-seconds>\n", daemonName)
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

	args := pflag.Args()
	if len(args) < 2 {
		usage()
		return 1
	}

	event := args[0]
	interval, err := daemon.ParseFrequency(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid poll frequency %q: %v\n", args[1], err)
		usage()
		return 1
	}

	if err := pid.Write(daemonName); err != nil {
		logger.Error().Err(err).Msg("Failed to write PID file")
		return 1
	}
	defer pid.Remove(daemonName)

	client := transport.NewClient(cfg.BarName)
	defer client.Close()

	recorder, err := history.NewService(history.Config{
		DBPath:       cfg.HistoryDB,
		BatchSize:    cfg.HistoryBatchSize,
		BatchTimeout: cfg.HistoryBatchTimeout,
		Enabled:      cfg.History,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize sample history")
		return 1
	}
	defer recorder.Close()

	d, err := daemon.New(daemon.Options{
		Event:    event,
		Interval: interval,
		Sampler:  cpu.New(),
		Client:   client,
		History:  recorder,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 1
	}

	ctx, cancel := daemon.SignalContext(context.Background())
	defer cancel()

	if err := d.Run(ctx); err != nil {
		if errors.HasCode(err, transport.ErrHostGone) {
			logger.Info().Msg("Status-bar host not running, exiting")
			return 0
		}
		logger.Error().Err(err).Msg("Error in poll loop")
		return 1
	}

	return 0
}
