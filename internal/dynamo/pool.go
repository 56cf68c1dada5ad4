package dynamo

import "sync"

// StatePool hands out zeroed scratch states of one bin count, for
// integrators that need several stage buffers per step.
type StatePool struct {
	bins int
	free sync.Pool
}

func NewStatePool(bins int) *StatePool {
	p := &StatePool{bins: bins}
	p.free.New = func() any { return make(State, bins) }
	return p
}

func (p *StatePool) Size() int { return p.bins }

// Get returns a zeroed state of Size entries.
func (p *StatePool) Get() State {
	s := p.free.Get().(State)
	clear(s)
	return s
}

// Put recycles s. States of another length are dropped.
func (p *StatePool) Put(s State) {
	if len(s) != p.bins {
		return
	}
	p.free.Put(s)
}
