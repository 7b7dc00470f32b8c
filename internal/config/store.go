// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the current configuration snapshot.
//
// Loops read Current() once at the start of each tick and keep that pointer
// for the whole tick. Reload builds a complete new snapshot before swapping,
// so a failed reload never partially applies.
type Store struct {
	path    string
	current atomic.Pointer[Config]
	mu      sync.Mutex // serializes reloads
	load    func(string) (*Config, error)
}

// NewStore creates a store seeded with an already loaded snapshot.
func NewStore(path string, cfg *Config) *Store {
	s := &Store{path: path, load: Load}
	s.current.Store(cfg)
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Reload re-reads the config file. On error the previous snapshot stays active.
func (s *Store) Reload() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load(s.path)
	if err != nil {
		return s.current.Load(), err
	}
	s.current.Store(cfg)
	return cfg, nil
}
