package callback

import "time"

// source of timers, swapped for a manual clock in tests
type Clock interface {
	NewTimer(d time.Duration) Timer
}

// cancellable one-shot timer
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// wall clock backed by time.NewTimer
type RealClock struct{}

func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time {
	return r.t.C
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}
