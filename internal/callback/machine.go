package callback

import "time"

// finite-state core of a callback session. it is not safe for concurrent use;
// the Controller owns it from a single goroutine.
type Machine struct {
	phase          Phase
	deadlinePassed bool
	successDelay   time.Duration
	failureDelay   time.Duration
}

// creates a machine in the Waiting phase
func NewMachine(successDelay, failureDelay time.Duration) *Machine {
	return &Machine{
		phase:        Waiting,
		successDelay: successDelay,
		failureDelay: failureDelay,
	}
}

func (m *Machine) Phase() Phase {
	return m.phase
}

// handles an observer notification. authenticated is checked before error,
// so a state carrying both resolves to Success.
func (m *Machine) Observe(state AuthState) (Effect, bool) {
	if m.phase.Terminal() {
		return Effect{}, false
	}

	switch {
	case state.Authenticated:
		return m.succeed(), true
	case state.Err != nil:
		return m.fail(), true
	case m.deadlinePassed && state.Idle():
		return m.timeOut(), true
	}

	return Effect{}, false
}

// handles the deadline firing with the latest observed state. while the provider
// is still loading the machine keeps waiting and times out on the next idle state.
func (m *Machine) Expire(latest AuthState) (Effect, bool) {
	if m.phase.Terminal() {
		return Effect{}, false
	}

	m.deadlinePassed = true

	if !latest.Idle() {
		return Effect{}, false
	}

	return m.timeOut(), true
}

func (m *Machine) succeed() Effect {
	m.phase = Success
	return Effect{Message: MessageSuccess, Navigate: PathHome, Delay: m.successDelay}
}

func (m *Machine) fail() Effect {
	m.phase = Failed
	return Effect{Message: MessageFailure, Navigate: PathLogin, Delay: m.failureDelay}
}

func (m *Machine) timeOut() Effect {
	m.phase = TimedOut
	return Effect{Message: MessageTimedOut, Navigate: PathLogin}
}
