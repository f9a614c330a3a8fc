package mainctx

import (
	"sync"
	"time"

	"github.com/Izzette/go-gtask/api/types"
)

// NewTimeout creates a one-shot [types.Source] that runs fn on its Context's dispatch loop no sooner than d after it
// is attached. Unlike [NewIdle], readiness is determined by a timer rather than immediate queue order, so Attach
// arms a [time.Timer] instead of enqueueing the Source directly.
func NewTimeout(d time.Duration, fn func()) types.Source {
	return &timeoutSource{idle: idleSource{fn: fn}, duration: d}
}

// timeoutSource implements [types.Source], delaying its readiness by duration before behaving like an idle source.
type timeoutSource struct {
	idle     idleSource
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

var _ types.Source = (*timeoutSource)(nil)

func (s *timeoutSource) Name() string               { return s.idle.Name() }
func (s *timeoutSource) SetName(name string)        { s.idle.SetName(name) }
func (s *timeoutSource) Priority() int32            { return s.idle.Priority() }
func (s *timeoutSource) SetPriority(priority int32) { s.idle.SetPriority(priority) }
func (s *timeoutSource) Dispatch() bool             { return s.idle.Dispatch() }

func (s *timeoutSource) markAttached() {
	s.idle.markAttached()
}

// arm implements the armable interface: it starts the timer that will, on expiry, enqueue the underlying idle
// behavior onto ctx at priority.
func (s *timeoutSource) arm(ctx *Context, priority int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer = time.AfterFunc(s.duration, func() {
		if s.idle.removed.Load() {
			return
		}
		ctx.enqueue(s, priority)
	})
}

// Remove implements [types.Source.Remove], additionally stopping the pending timer if it has not yet fired.
func (s *timeoutSource) Remove() {
	s.idle.Remove()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}
