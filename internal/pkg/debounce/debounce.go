// Package debounce limits how often an action may run.
//
// A wrapped action runs immediately when called outside its cooldown window
// and starts the window. Calls made while the window is open are dropped,
// not queued. The window is purely time based: it does not wait for work
// the action starts in the background.
package debounce

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// Option configures a wrapped action.
type Option func(*gate)

// WithClock sets the clock used to time the cooldown window.
func WithClock(c clock.Clock) Option {
	return func(g *gate) { g.clock = c }
}

type gate struct {
	clock  clock.Clock
	window time.Duration

	mu      sync.Mutex
	cooling bool
}

func newGate(window time.Duration, opts []Option) *gate {
	g := &gate{clock: clock.New(), window: window}
	for _, o := range opts {
		o(g)
	}
	return g
}

// acquire opens the cooldown window and reports whether the caller may run.
func (g *gate) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cooling {
		return false
	}
	g.cooling = true
	return true
}

func (g *gate) startCooldown() {
	g.clock.AfterFunc(g.window, func() {
		g.mu.Lock()
		g.cooling = false
		g.mu.Unlock()
	})
}

// Wrap returns a debounced version of action.
func Wrap(action func(), window time.Duration, opts ...Option) func() {
	g := newGate(window, opts)
	return func() {
		if !g.acquire() {
			return
		}
		defer g.startCooldown()
		action()
	}
}

// Wrap1 is Wrap for actions taking one argument. The argument of a dropped
// call is discarded.
func Wrap1[T any](action func(T), window time.Duration, opts ...Option) func(T) {
	g := newGate(window, opts)
	return func(v T) {
		if !g.acquire() {
			return
		}
		defer g.startCooldown()
		action(v)
	}
}
