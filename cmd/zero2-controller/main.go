// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/zero2-controller/internal/api"
	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/execx"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/netaction"
	"github.com/tomtom215/zero2-controller/internal/network"
	"github.com/tomtom215/zero2-controller/internal/probe"
	"github.com/tomtom215/zero2-controller/internal/supervisor"
	"github.com/tomtom215/zero2-controller/internal/supervisor/services"
)

// shutdownGrace is added to ACTION_TIMEOUT so a loop caught mid-action can
// finish it before suture gives up on the service.
const shutdownGrace = 5 * time.Second

func main() {
	path := config.FindConfigFile()
	cfg, err := config.Load(path)
	if err != nil {
		// Default logger (stderr) is active until Init.
		var cerr *config.Error
		if errors.As(err, &cerr) {
			logging.Fatal().Err(err).Str("path", cerr.Path).Str("key", cerr.Key).Msg("Invalid configuration")
		}
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamp:  true,
		Output:     os.Stderr,
		File:       cfg.LogFile,
		MaxBytes:   cfg.LogMaxBytes,
		MaxBackups: cfg.LogBackupCount,
	})
	defer func() {
		if err := logging.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing log file")
		}
	}()

	logging.Info().
		Str("config", cfg.Source()).
		Bool("low_bat", cfg.EnableLowBat).
		Bool("display", cfg.EnableDisplay).
		Bool("buttons", cfg.EnableButtons).
		Bool("bt_pan", cfg.EnableSSHBT).
		Bool("usb_otg", cfg.EnableUSBOTG).
		Bool("hotspot", cfg.EnableWiFiHotspot).
		Msg("Starting Zero2 controller")
	for _, w := range cfg.Warnings() {
		logging.Warn().Str("config", cfg.Source()).Msg(w)
	}

	store := config.NewStore(path, cfg)

	runner := execx.NewOSRunner()
	executor := netaction.NewExecutor(runner, cfg.ActionTimeoutDuration())
	host := probe.NewHost(runner, cfg.ProbeTimeoutDuration())
	reconciler := network.NewReconciler(store, host, executor)

	hw := openHardware(store, host, reconciler, executor)
	defer hw.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.ActionTimeoutDuration() + shutdownGrace,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddNetworkService(services.NewLoopService("network-reconciler", reconciler,
		func() time.Duration { return store.Current().CheckInterval() }))
	hw.addServices(tree, store)

	apply := []services.ApplyFunc{
		func(c *config.Config) { logging.SetLevelString(c.LogLevel) },
		func(c *config.Config) { executor.SetTimeout(c.ActionTimeoutDuration()) },
		func(c *config.Config) { host.SetTimeout(c.ProbeTimeoutDuration()) },
	}
	apply = append(apply, hw.applyFuncs()...)
	tree.AddControlService(services.NewReloadService(store, apply...))

	if cfg.EnableStatusAPI {
		handler := &api.Handler{Config: store, Network: reconciler}
		if hw.watchdog != nil {
			handler.Battery = hw.watchdog
		}
		if hw.display != nil {
			handler.Display = displayLines{hw.display}
		}
		server := &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           api.NewRouter(handler),
			ReadHeaderTimeout: 5 * time.Second,
		}
		tree.AddControlService(services.NewHTTPServerService(server, shutdownGrace))
		logging.Info().Str("addr", cfg.StatusAddr).Msg("Status API enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for loops to finish their current tick...")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Zero2 controller stopped")
}
