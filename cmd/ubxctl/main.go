package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/ubxctl/internal/config"
	"github.com/danmuck/ubxctl/internal/logging"
	"github.com/danmuck/ubxctl/internal/observability"
	"github.com/danmuck/ubxctl/internal/receiver"
	"github.com/danmuck/ubxctl/internal/server"
	"github.com/danmuck/ubxctl/internal/ubx/dict"
	"github.com/danmuck/ubxctl/internal/ubx/frame"
)

func main() {
	cfgPath := flag.String("config", "ubxctl.toml", "path to TOML config")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "ubxctl: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	os.Setenv(logging.EnvLogLevel, cfg.LogLevel)
	logging.ConfigureRuntime()
	logger := observability.InitLogger("ubxctl")
	observability.RegisterMetrics()

	port, err := receiver.OpenPort(cfg.Port, cfg.Baud)
	if err != nil {
		return err
	}
	defer port.Close()

	policy := frame.Lenient
	if cfg.Strict {
		policy = frame.Strict
	}
	reg := dict.NewRegistry()
	recv := receiver.New(port, reg, policy, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Closing the port on shutdown unblocks the read loop.
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- recv.Run(ctx)
	}()

	srv := server.New(recv, logger, cfg.CorsOrigins)
	go func() {
		if err := srv.Run(cfg.HTTPAddr); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Int("baud", cfg.Baud).
		Str("http_addr", cfg.HTTPAddr).
		Msg("ubxctl running")

	err = <-errCh
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("shutdown")
		return nil
	}
	return err
}
