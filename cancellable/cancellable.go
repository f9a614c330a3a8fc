// Package cancellable implements [types.Cancellable], the external collaborator the task core binds to: a
// shareable, one-way flag with an observer registry, modeled on GLib's GCancellable but implemented with Go-native
// primitives.
//
// The observer registry is kept in a [github.com/benbjohnson/immutable.List], the same persistent-collection
// library the teacher (go-safeconcurrency) depends on for its snapshot state. Using a persistent list lets Connect
// publish a new snapshot with a single atomic pointer swap, and lets Cancel iterate a stable, race-free view of the
// handlers registered at the moment cancellation fired, without holding a lock across arbitrary user callbacks.
package cancellable

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"

	"github.com/Izzette/go-gtask/api/types"
)

// New creates a new, not-yet-cancelled Cancellable.
func New() *Cancellable {
	c := &Cancellable{}
	empty := immutable.NewList[*observer]()
	c.observers.Store(empty)

	return c
}

// observer is one registered cancellation handler. settled is CAS'd to true exactly once, by whichever of Cancel,
// Connect's post-registration race check, or Disconnect gets there first. This guarantees a handler fires at most
// once, and never fires once Disconnect has claimed it.
type observer struct {
	id      types.HandlerID
	fn      func()
	settled atomic.Bool
}

// Cancellable is the concrete, Go-native implementation of [types.Cancellable].
type Cancellable struct {
	cancelled atomic.Bool
	observers atomic.Pointer[immutable.List[*observer]]
	nextID    atomic.Uint64
}

var _ types.Cancellable = (*Cancellable)(nil)

// IsCancelled implements [types.Cancellable.IsCancelled].
func (c *Cancellable) IsCancelled() bool {
	return c.cancelled.Load()
}

// Cancel implements [types.Cancellable.Cancel].
// Cancellation is edge-triggered: only the goroutine that makes the false->true transition runs the observers, and
// it runs exactly once regardless of how many goroutines call Cancel concurrently.
func (c *Cancellable) Cancel() {
	if !c.cancelled.CompareAndSwap(false, true) {
		return
	}

	list := c.observers.Load()
	for i := 0; i < list.Len(); i++ {
		obs := list.Get(i)
		if !obs.settled.CompareAndSwap(false, true) {
			continue
		}
		obs.fn()
	}
}

// Connect implements [types.Cancellable.Connect].
func (c *Cancellable) Connect(handler func()) types.HandlerID {
	id := types.HandlerID(c.nextID.Add(1))
	obs := &observer{id: id, fn: handler}

	// If already cancelled, invoke synchronously and skip registration, matching GLib's g_cancellable_connect
	// semantics of firing immediately (and returning a handler ID of 0, which disconnect treats as a no-op) when the
	// Cancellable is already cancelled.
	if c.cancelled.Load() {
		handler()

		return 0
	}

	for {
		old := c.observers.Load()
		next := old.Append(obs)
		if c.observers.CompareAndSwap(old, next) {
			break
		}
	}

	// A cancellation may have raced the registration above: Cancel may have already iterated a snapshot that either
	// does or doesn't include obs. The settled CAS guarantees the handler still runs exactly once either way.
	if c.cancelled.Load() && obs.settled.CompareAndSwap(false, true) {
		handler()
	}

	return id
}

// Disconnect implements [types.Cancellable.Disconnect].
func (c *Cancellable) Disconnect(id types.HandlerID) {
	if id == 0 {
		return
	}

	list := c.observers.Load()
	for i := 0; i < list.Len(); i++ {
		obs := list.Get(i)
		if obs.id == id {
			obs.settled.Store(true)

			return
		}
	}
}
