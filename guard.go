package anyref

import "sync/atomic"

const (
	stateLent     int32 = -1
	stateConsumed int32 = -2
)

// guard is the single-writer/multi-reader state of an exclusive handle.
//
//	 0  exclusive and idle
//	>0  that many scoped shared loans are open
//	-1  lent exclusively to a sub-handle
//	-2  consumed
//
// The atomic field also makes go vet report copies of the owning handle.
type guard struct {
	state atomic.Int32
}

func (g *guard) share() bool {
	for {
		s := g.state.Load()
		if s < 0 {
			return false
		}
		if g.state.CompareAndSwap(s, s+1) {
			return true
		}
	}
}

func (g *guard) unshare() { g.state.Add(-1) }

func (g *guard) lend() bool { return g.state.CompareAndSwap(0, stateLent) }

func (g *guard) restore() { g.state.CompareAndSwap(stateLent, 0) }

func (g *guard) consume() bool { return g.state.CompareAndSwap(0, stateConsumed) }

func (g *guard) writable() bool { return g.state.Load() == 0 }

func (g *guard) readable() bool { return g.state.Load() >= 0 }

func (g *guard) consumed() bool { return g.state.Load() == stateConsumed }
