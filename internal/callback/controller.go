package callback

import (
	"context"
	"log/slog"
	"time"

	"codeberg.org/algopatterns/academy/internal/logger"
	"github.com/google/uuid"
)

// creates a controller in the Waiting phase and arms its deadline.
// the caller starts Run on its own goroutine and calls Close on teardown.
func NewController(opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SuccessDelay <= 0 {
		opts.SuccessDelay = DefaultSuccessDelay
	}
	if opts.FailureDelay <= 0 {
		opts.FailureDelay = DefaultFailureDelay
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	c := &Controller{
		ID:           uuid.NewString(),
		machine:      NewMachine(opts.SuccessDelay, opts.FailureDelay),
		clock:        opts.Clock,
		opts:         opts,
		observations: make(chan observation),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	c.deadline = c.clock.NewTimer(opts.Timeout)
	return c
}

// event loop: observer notifications, deadline and grace timers are all handled
// here, one at a time, until navigation fires or the session is torn down
func (c *Controller) Run(ctx context.Context) {
	c.started.Store(true)
	defer close(c.done)

	log := logger.With("callback_session", c.ID)

	var latest AuthState
	var grace Timer
	var graceC <-chan time.Time
	var target string

	defer func() {
		c.deadline.Stop()
		if grace != nil {
			grace.Stop()
		}
	}()

	// applies a transition effect, true when the session is finished
	apply := func(effect Effect) bool {
		c.deadline.Stop()
		c.phase.Store(int32(c.machine.Phase()))

		log.Info("callback session resolved", "phase", c.machine.Phase().String(), "navigate", effect.Navigate)

		if c.opts.OnMessage != nil && effect.Message != "" {
			c.opts.OnMessage(c.machine.Phase(), effect.Message)
		}

		if effect.Delay <= 0 {
			c.navigate(ctx, log, effect.Navigate)
			return true
		}

		target = effect.Navigate
		grace = c.clock.NewTimer(effect.Delay)
		graceC = grace.C()
		return false
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("callback session torn down", "phase", c.Phase().String())
			return

		case <-c.stop:
			log.Debug("callback session closed", "phase", c.Phase().String())
			return

		case obs := <-c.observations:
			latest = obs.state
			finished := false

			if effect, ok := c.machine.Observe(obs.state); ok {
				finished = apply(effect)
			}

			close(obs.processed)

			if finished {
				return
			}

		case <-c.deadline.C():
			if effect, ok := c.machine.Expire(latest); ok {
				if apply(effect) {
					return
				}
				continue
			}

			log.Debug("callback deadline passed while provider still busy", "loading", latest.Loading)

		case <-graceC:
			c.navigate(ctx, log, target)
			return
		}
	}
}

// feeds an observer snapshot into the loop and returns once it has been processed.
// after the session finished or was closed it returns immediately.
func (c *Controller) Observe(state AuthState) {
	obs := observation{state: state, processed: make(chan struct{})}

	select {
	case c.observations <- obs:
	case <-c.done:
		return
	}

	select {
	case <-obs.processed:
	case <-c.done:
	}
}

// tears the session down: pending timers are cancelled and no navigation
// fires once Close has returned
func (c *Controller) Close() {
	c.closing.Store(true)
	c.stopOnce.Do(func() { close(c.stop) })

	if c.started.Load() {
		<-c.done
		return
	}

	c.deadline.Stop()
}

// closed when the event loop has exited
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

// returns the navigation target once it has fired
func (c *Controller) Navigated() (string, bool) {
	if path := c.navigated.Load(); path != nil {
		return *path, true
	}

	return "", false
}

func (c *Controller) navigate(ctx context.Context, log *slog.Logger, path string) {
	if c.closing.Load() || ctx.Err() != nil {
		log.Debug("navigation suppressed after teardown", "navigate", path)
		return
	}

	c.navigated.Store(&path)

	if c.opts.OnNavigate != nil {
		c.opts.OnNavigate(path)
	}
}

// deadline the session was armed with
func (c *Controller) Timeout() time.Duration {
	return c.opts.Timeout
}
