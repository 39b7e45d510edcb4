package pages

import (
	"sync"
	"sync/atomic"
)

// submitGate lets one submission through at a time.
type submitGate struct {
	mu   sync.Mutex
	busy bool
}

// begin moves idle -> submitting. It returns false when a submission is
// already in flight.
func (g *submitGate) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

// end moves submitting -> idle.
func (g *submitGate) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

// Submitting reports whether the control should render disabled.
func (g *submitGate) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// requestGuard tags each fetch with a generation. Only the newest
// generation may apply its result.
type requestGuard struct {
	gen atomic.Uint64
}

func (g *requestGuard) next() uint64 {
	return g.gen.Add(1)
}

func (g *requestGuard) current(gen uint64) bool {
	return g.gen.Load() == gen
}
