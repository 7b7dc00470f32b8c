// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is how long each service gets to finish its current
	// tick once the root context is canceled.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// SupervisorTree manages the controller's loops.
//
// The tree is organized into three layers:
//   - hardware: battery watchdog, display, buttons
//   - network: mode reconciler
//   - control: status API, config reload
//
// A failing display or button loop restarts inside the hardware layer and
// never interrupts network reconciliation or the battery watchdog's peers.
type SupervisorTree struct {
	root     *suture.Supervisor
	hardware *suture.Supervisor
	network  *suture.Supervisor
	control  *suture.Supervisor
	logger   *slog.Logger
	config   TreeConfig
}

// NewSupervisorTree creates a new supervisor tree with the given configuration.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	// Apply defaults for zero values
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	// MustHook has a pointer receiver, so take the address.
	handler := &sutureslog.Handler{Logger: logger}
	logHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook: func(e suture.Event) {
			metrics.ServiceEvents.WithLabelValues(EventType(e)).Inc()
			logHook(e)
		},
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	// Child supervisors inherit the EventHook when added to the root.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("zero2-controller", rootSpec)
	hardware := suture.New("hardware-layer", childSpec)
	network := suture.New("network-layer", childSpec)
	control := suture.New("control-layer", childSpec)

	root.Add(hardware)
	root.Add(network)
	root.Add(control)

	return &SupervisorTree{
		root:     root,
		hardware: hardware,
		network:  network,
		control:  control,
		logger:   logger,
		config:   config,
	}, nil
}

// EventType maps a suture event to a metrics label.
func EventType(e suture.Event) string {
	switch e.(type) {
	case suture.EventServicePanic:
		return "panic"
	case suture.EventServiceTerminate:
		return "terminate"
	case suture.EventBackoff:
		return "backoff"
	case suture.EventResume:
		return "resume"
	case suture.EventStopTimeout:
		return "stop_timeout"
	default:
		return "unknown"
	}
}

// Root returns the root supervisor for direct access if needed.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddHardwareService adds a loop that owns GPIO or I2C handles.
func (t *SupervisorTree) AddHardwareService(svc suture.Service) suture.ServiceToken {
	return t.hardware.Add(svc)
}

// AddNetworkService adds the reconciler loop.
func (t *SupervisorTree) AddNetworkService(svc suture.Service) suture.ServiceToken {
	return t.network.Add(svc)
}

// AddControlService adds the status API or the reload handler.
func (t *SupervisorTree) AddControlService(svc suture.Service) suture.ServiceToken {
	return t.control.Add(svc)
}

// Serve starts the supervisor tree and blocks until the context is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the supervisor tree in a background goroutine.
// Returns a channel that receives the error (or nil) when the supervisor stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport returns the services that failed to stop within
// the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
