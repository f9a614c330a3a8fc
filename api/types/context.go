package types

// GenerationID is a monotonically increasing counter of the Sources a [Context] has dispatched.
type GenerationID uint64

// Context is a per-thread cooperative event loop that accepts [Source] instances for dispatch.
//
// A goroutine may push itself a thread-default Context with
// [github.com/Izzette/go-gtask/mainctx.PushThreadDefault], and pop it again with
// [github.com/Izzette/go-gtask/mainctx.PopThreadDefault]. A [github.com/Izzette/go-gtask/gtask.Task] captures
// whichever Context is thread-default on the goroutine that constructs it, and will always dispatch its callback on
// that Context.
type Context interface {
	// Attach binds a Source to this Context at the given priority. The Source will be invoked from the goroutine that
	// runs this Context's dispatch loop.
	Attach(source Source, priority int32)

	// Generation returns the current generation counter of the Context. It increments once per Source dispatched.
	Generation() GenerationID

	// IsRunning reports whether the Context's run loop is currently executing.
	IsRunning() bool
}

// Source is an attachable unit of work inside a [Context]: idle, timeout, or arbitrary user work.
type Source interface {
	// Name returns the debug name of the Source, or the empty string if unset.
	Name() string

	// SetName sets the debug name of the Source. It is a no-op once the Source has been attached.
	SetName(name string)

	// Priority returns the dispatch priority of the Source. Lower values run first.
	Priority() int32

	// SetPriority sets the dispatch priority of the Source. It is a no-op once the Source has been attached.
	SetPriority(priority int32)

	// Dispatch is invoked by the owning Context when the Source is ready to run. It returns true if the Source should
	// remain attached (only meaningful for recurring sources; one-shot sources such as idle callbacks should always
	// return false).
	Dispatch() bool

	// Remove detaches the Source from its Context, if attached. It is safe to call multiple times.
	Remove()
}
