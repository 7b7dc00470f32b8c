// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package services

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// Reloader re-reads the configuration. Satisfied by *config.Store.
type Reloader interface {
	Reload() (*config.Config, error)
}

// ApplyFunc pushes a freshly loaded snapshot into components that cache
// settings outside the per-tick snapshot (timeouts, log level).
type ApplyFunc func(cfg *config.Config)

// ReloadService reloads the configuration on SIGHUP.
//
// A reload that fails keeps the previous snapshot active. Loops pick up a
// successful reload on their next tick.
type ReloadService struct {
	store   Reloader
	apply   []ApplyFunc
	signals chan os.Signal
	log     zerolog.Logger
}

// NewReloadService creates a SIGHUP reload handler.
func NewReloadService(store Reloader, apply ...ApplyFunc) *ReloadService {
	return &ReloadService{
		store:   store,
		apply:   apply,
		signals: make(chan os.Signal, 1),
		log:     logging.Component("config"),
	}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	signal.Notify(s.signals, syscall.SIGHUP)
	defer signal.Stop(s.signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.signals:
			s.reload()
		}
	}
}

func (s *ReloadService) reload() {
	cfg, err := s.store.Reload()
	metrics.RecordConfigReload(err)
	if err != nil {
		s.log.Error().Err(err).Msg("config reload failed, keeping previous configuration")
		return
	}
	for _, w := range cfg.Warnings() {
		s.log.Warn().Str("source", cfg.Source()).Msg(w)
	}
	for _, fn := range s.apply {
		fn(cfg)
	}
	s.log.Info().Str("source", cfg.Source()).Msg("configuration reloaded")
}

// String implements fmt.Stringer for logging.
func (s *ReloadService) String() string {
	return "config-reload"
}
