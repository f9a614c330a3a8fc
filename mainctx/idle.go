package mainctx

import (
	"sync"
	"sync/atomic"

	"github.com/Izzette/go-gtask/api/types"
)

// NewIdle creates a one-shot [types.Source] that runs fn the next time its Context's dispatch loop reaches it, then
// detaches itself. This is the Source kind [github.com/Izzette/go-gtask/gtask] uses internally to schedule dispatch
// of a Task's callback (spec.md §4.3).
func NewIdle(fn func()) types.Source {
	return &idleSource{fn: fn}
}

// idleSource implements [types.Source] as a one-shot callback.
type idleSource struct {
	baseSource
	fn      func()
	removed atomic.Bool
	once    sync.Once
}

var _ types.Source = (*idleSource)(nil)

// Dispatch implements [types.Source.Dispatch].
func (s *idleSource) Dispatch() bool {
	s.once.Do(func() {
		if !s.removed.Load() {
			s.fn()
		}
	})

	return false
}

// Remove implements [types.Source.Remove].
func (s *idleSource) Remove() {
	s.removed.Store(true)
}
