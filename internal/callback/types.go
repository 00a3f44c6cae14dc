package callback

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultTimeout      = 5 * time.Second
	DefaultSuccessDelay = 800 * time.Millisecond
	DefaultFailureDelay = 1500 * time.Millisecond

	// navigation targets owned by the front end
	PathHome  = "/modules"
	PathLogin = "/login"
)

// status texts shown while the redirect is pending
const (
	MessageSuccess  = "Authentication successful! Redirecting..."
	MessageFailure  = "Authentication failed. Redirecting to login..."
	MessageTimedOut = "Authentication timed out. Redirecting to login..."
)

// callback session phase
type Phase int32

const (
	Waiting Phase = iota
	Success
	Failed
	TimedOut
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// reports whether no further transition can happen
func (p Phase) Terminal() bool {
	return p != Waiting
}

// snapshot reported by the identity provider session
type AuthState struct {
	Authenticated bool
	Loading       bool
	Err           error
}

// reports whether the provider has gone quiet without resolving
func (s AuthState) Idle() bool {
	return !s.Authenticated && !s.Loading && s.Err == nil
}

// what a transition asks the controller to do
type Effect struct {
	Message  string
	Navigate string
	Delay    time.Duration
}

// receives the redirect decision
type NavigateFunc func(path string)

// receives transient status messages
type MessageFunc func(phase Phase, text string)

type Options struct {
	Timeout      time.Duration
	SuccessDelay time.Duration
	FailureDelay time.Duration

	OnNavigate NavigateFunc
	OnMessage  MessageFunc

	// defaults to the wall clock
	Clock Clock
}

// drives one callback session: a Machine plus the timers around it
type Controller struct {
	ID string

	machine  *Machine
	clock    Clock
	opts     Options
	deadline Timer

	observations chan observation
	stop         chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
	started      atomic.Bool
	closing      atomic.Bool
	phase        atomic.Int32
	navigated    atomic.Pointer[string]
}

type observation struct {
	state     AuthState
	processed chan struct{}
}
