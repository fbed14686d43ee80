package clock

import "time"

// Clock allows injecting time into the sweep and services.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests
// and for replaying a sweep at a given time).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type localClock struct {
	Clock
	loc *time.Location
}

// In returns a clock that reports c's instants in loc.
func In(c Clock, loc *time.Location) Clock {
	return localClock{Clock: c, loc: loc}
}

func (l localClock) Now() time.Time {
	return l.Clock.Now().In(l.loc)
}
