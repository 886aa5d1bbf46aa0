// Package clock supplies the Clock external collaborator the VM's WAIT
// opcode suspends on: either a fixed pause, or a wait until the wall clock
// matches a time pattern.
package clock

import (
	"time"

	"github.com/EmonFan/bardolph/internal/timepattern"
)

// Clock is consumed by package vm; it never appears as a process-wide
// global, it's passed in explicitly when a Machine is constructed.
type Clock interface {
	Start()
	Stop()
	PauseFor(seconds float64)
	WaitUntil(pat timepattern.Set)
}

// pollInterval is how often WaitUntil re-checks the pattern against the
// current wall clock.
const pollInterval = time.Second

// RealClock sleeps on the real wall clock via time.Sleep/time.Now.
type RealClock struct {
	running bool
}

// New returns a RealClock.
func New() *RealClock { return &RealClock{} }

func (c *RealClock) Start() { c.running = true }
func (c *RealClock) Stop()  { c.running = false }

func (c *RealClock) PauseFor(seconds float64) {
	if seconds <= 0 {
		return
	}
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}

func (c *RealClock) WaitUntil(pat timepattern.Set) {
	for {
		now := time.Now()
		if pat.Matches(now.Hour(), now.Minute()) {
			return
		}
		time.Sleep(pollInterval)
	}
}
