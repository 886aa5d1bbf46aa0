package clock

import "github.com/EmonFan/bardolph/internal/timepattern"

// FakeClock is a deterministic Clock for tests: PauseFor/WaitUntil return
// immediately and simply record what they were asked to do.
type FakeClock struct {
	Started   bool
	Stopped   bool
	Pauses    []float64
	WaitCalls []timepattern.Set
	Hour, Min int // a wall-clock time a test may set; WaitUntil does not read it
}

func NewFake() *FakeClock { return &FakeClock{} }

func (c *FakeClock) Start() { c.Started = true }
func (c *FakeClock) Stop()  { c.Stopped = true }

func (c *FakeClock) PauseFor(seconds float64) {
	c.Pauses = append(c.Pauses, seconds)
}

func (c *FakeClock) WaitUntil(pat timepattern.Set) {
	c.WaitCalls = append(c.WaitCalls, pat)
}
