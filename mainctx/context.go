// Package mainctx implements [types.Context] and [types.Source]: the per-thread cooperative event loop the task core
// dispatches callbacks on, and the idle/timeout sources it attaches work to.
//
// It is grounded on the teacher library's eventloop package, which serializes event execution through a
// single-concurrency workerpool (see eventloop.NewBuffered's `workpool.NewBuffered[...](snapshotPtr, 1, buffer)`);
// mainctx.Context does the same, using [github.com/Izzette/go-gtask/workerpool.Pool] with a concurrency of one to
// guarantee sources dispatch one at a time, in priority order, on a single dedicated goroutine — the "single-threaded
// cooperative dispatch inside each captured context" spec.md §5 requires.
package mainctx

import (
	"sync"
	"sync/atomic"

	"github.com/Izzette/go-gtask/api/types"
	"github.com/Izzette/go-gtask/internal/goroutinelocal"
	"github.com/Izzette/go-gtask/workerpool"
)

// threadDefault tracks, per goroutine, the stack of pushed thread-default Contexts. See
// [github.com/Izzette/go-gtask/internal/goroutinelocal] for why Go needs a fallback here where GLib has a real
// thread-local.
var threadDefault = goroutinelocal.NewStack[*Context]()

// Context implements [types.Context].
type Context struct {
	pool *workerpool.Pool

	generation atomic.Uint64
	started    atomic.Bool
	closed     atomic.Bool
	closeOnce  sync.Once
}

var _ types.Context = (*Context)(nil)

// New creates (but does not start) a Context. [Context.Start] must be called before any attached Source will run.
func New() *Context {
	return &Context{pool: workerpool.New(1)}
}

// Start starts the Context's dispatch loop. It must be called exactly once.
func (c *Context) Start() {
	if c.started.Swap(true) {
		panic("mainctx: attempt to start a previously started Context")
	}
	c.pool.Start()
}

// Close stops the Context's dispatch loop, waiting for any in-flight or queued Source to finish dispatching.
// It is safe to call multiple times.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.pool.Close()
		c.closed.Store(true)
	})
}

// IsRunning implements [types.Context.IsRunning].
func (c *Context) IsRunning() bool {
	return c.started.Load() && !c.closed.Load()
}

// Generation implements [types.Context.Generation]. It increments once per Source dispatched.
// [github.com/Izzette/go-gtask/gtask] records it when a Task is constructed but does not compare it later; the
// "deferred callback" rule follows from this Context dispatching on a single goroutine.
func (c *Context) Generation() types.GenerationID {
	return types.GenerationID(c.generation.Load())
}

// Attach implements [types.Context.Attach].
func (c *Context) Attach(source types.Source, priority int32) {
	source.SetPriority(priority)

	if a, ok := source.(armable); ok {
		a.arm(c, priority)
	} else {
		c.enqueue(source, priority)
	}

	if m, ok := source.(markable); ok {
		m.markAttached()
	}
}

// armable is implemented by sources (such as timeoutSource) whose readiness is determined outside the Context's own
// queue (a timer firing), and which therefore arrange their own eventual enqueue rather than running immediately.
type armable interface {
	arm(ctx *Context, priority int32)
}

// markable is implemented by this package's own Source implementations so Attach can flip their "attached" flag,
// after which SetName/SetPriority become no-ops per spec.md §4.1.
type markable interface {
	markAttached()
}

// enqueue submits source to the Context's internal dispatch pool.
func (c *Context) enqueue(source types.Source, priority int32) {
	c.pool.Enqueue(&sourceItem{source: source, priority: priority, ctx: c})
}

// sourceItem adapts a [types.Source] to [types.WorkItem] for submission to the Context's internal pool.
type sourceItem struct {
	source   types.Source
	priority int32
	ctx      *Context
}

// Priority implements [types.WorkItem.Priority].
func (s *sourceItem) Priority() int32 { return s.priority }

// Run implements [types.WorkItem.Run].
func (s *sourceItem) Run() {
	s.source.Dispatch()
	s.ctx.generation.Add(1)
}

// PushThreadDefault pushes ctx as the thread-default Context for the calling goroutine.
// Pair every call with a deferred [PopThreadDefault].
func PushThreadDefault(ctx *Context) {
	threadDefault.Push(ctx)
}

// PopThreadDefault pops the most recently pushed thread-default Context for the calling goroutine.
func PopThreadDefault() {
	threadDefault.Pop()
}

// Current returns the calling goroutine's thread-default Context, or nil if none has been pushed.
func Current() *Context {
	c, ok := threadDefault.Top()
	if !ok {
		return nil
	}

	return c
}
