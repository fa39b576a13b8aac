// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aibor/linuxvm/internal/machine"
)

// Number of events that can be queued before [Notify] blocks.
const eventQueueSize = 4

var errNoReason = errors.New("no reason given")

// Platform is a hypervisor that can run a guest described by a
// [machine.Config].
type Platform interface {
	machine.Validator

	// Start submits the start request for the given config and returns
	// immediately. The guest is brought up asynchronously.
	//
	// The platform must call notify exactly once with either [Started] or
	// [StartFailed]. After [Started] it must call notify exactly once with
	// either [GuestStopped] or [GuestError]. Notify may block until
	// [Controller.Wait] runs, so it must be called from a goroutine of the
	// platform. The context bounds the lifetime of all resources the platform
	// allocates for the guest.
	Start(ctx context.Context, cfg *machine.Config, notify Notify)
}

// Controller owns a single guest from configuration until it ended.
//
// A Controller is used once: [Controller.Configure], [Controller.Start] and
// [Controller.Wait] must be called in this order from the same goroutine.
type Controller struct {
	platform Platform
	cfg      *machine.Config
	state    State
	events   chan Event
	done     chan struct{}
}

// NewController creates a new [Controller] for the given [Platform].
func NewController(platform Platform) *Controller {
	return &Controller{
		platform: platform,
		state:    StateUnconfigured,
		events:   make(chan Event, eventQueueSize),
		done:     make(chan struct{}),
	}
}

// State returns the current [State].
func (c *Controller) State() State {
	return c.state
}

// Configure sets the config for the guest.
//
// It returns a [machine.ConfigError] if the config did not pass
// [machine.Validate].
func (c *Controller) Configure(cfg *machine.Config) error {
	if c.state != StateUnconfigured {
		return transitionError(c.state, "configure")
	}

	if !cfg.Validated() {
		return &machine.ConfigError{
			Op:  "configure",
			Err: machine.ErrNotValidated,
		}
	}

	c.cfg = cfg
	c.setState(StateConfigured)

	return nil
}

// Start issues the asynchronous start request. The result is handled by
// [Controller.Wait].
func (c *Controller) Start(ctx context.Context) error {
	if c.state != StateConfigured {
		return transitionError(c.state, "start")
	}

	c.setState(StateStarting)
	c.platform.Start(ctx, c.cfg, c.notify)

	return nil
}

// Wait blocks until the guest ended and handles all events in the meantime.
//
// It returns nil if the guest shut itself down, a [StartError] if the guest
// could not be started or a [RuntimeError] if the guest failed after it was
// started. Events arriving after that are dropped.
func (c *Controller) Wait() error {
	if c.state != StateStarting && c.state != StateRunning {
		return transitionError(c.state, "wait")
	}

	defer close(c.done)

	for {
		event := <-c.events

		err := c.handle(event)
		if c.state.Terminal() {
			return err
		}
	}
}

func (c *Controller) notify(event Event) {
	select {
	case c.events <- event:
	case <-c.done:
		slog.Debug("Dropping event after guest ended",
			slog.String("event", eventName(event)))
	}
}

func (c *Controller) handle(event Event) error {
	switch event := event.(type) {
	case Started:
		if c.state != StateStarting {
			break
		}

		c.setState(StateRunning)

		return nil
	case StartFailed:
		if c.state != StateStarting {
			break
		}

		c.setState(StateFailed)

		return &StartError{Err: reason(event.Err)}
	case GuestStopped:
		if c.state != StateStarting && c.state != StateRunning {
			break
		}

		c.setState(StateStopped)

		return nil
	case GuestError:
		if c.state != StateStarting && c.state != StateRunning {
			break
		}

		c.setState(StateFailed)

		return &RuntimeError{Err: reason(event.Err)}
	}

	slog.Debug("Ignoring unexpected event",
		slog.String("event", eventName(event)),
		slog.String("state", c.state.String()))

	return nil
}

func (c *Controller) setState(state State) {
	attrs := []any{
		slog.String("from", c.state.String()),
		slog.String("to", state.String()),
	}
	if c.cfg != nil {
		attrs = append(attrs, slog.String("machine", c.cfg.ID.String()))
	}

	slog.Debug("Guest state changed", attrs...)

	c.state = state
}

func reason(err error) error {
	if err == nil {
		return errNoReason
	}

	return err
}

func eventName(event Event) string {
	switch event.(type) {
	case Started:
		return "started"
	case StartFailed:
		return "start failed"
	case GuestStopped:
		return "guest stopped"
	case GuestError:
		return "guest error"
	default:
		return "unknown"
	}
}

// Run configures and starts a guest with the given [Platform] and config and
// waits for it to end. See [Controller.Wait] for the returned errors.
func Run(ctx context.Context, platform Platform, cfg *machine.Config) error {
	ctrl := NewController(platform)

	err := ctrl.Configure(cfg)
	if err != nil {
		return err
	}

	err = ctrl.Start(ctx)
	if err != nil {
		return err
	}

	return ctrl.Wait()
}
