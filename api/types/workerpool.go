package types

// WorkItem is a unit of work a [github.com/Izzette/go-gtask/workerpool.Pool] can execute. It is the bridge between
// a [github.com/Izzette/go-gtask/gtask.Task] offloaded onto the pool and the pool's scheduling machinery.
type WorkItem interface {
	// Run executes the work item. It must not panic across a worker boundary; the pool recovers panics defensively
	// but a panicking WorkItem leaves no result.
	Run()

	// Priority returns the scheduling priority of the item. Lower values are more urgent.
	Priority() int32
}

// WorkerPool is a bounded, priority-ordered pool of goroutines that execute [WorkItem] instances submitted to it.
type WorkerPool interface {
	// Start launches the pool's fixed-width worker goroutines. It must be called exactly once.
	Start()

	// Close stops accepting new work and waits for all in-flight and queued work to complete.
	// It is safe to call Close multiple times.
	Close()

	// Enqueue submits item for execution. Items are dequeued in priority order, ties broken by arrival order.
	// It panics if called after Close.
	Enqueue(item WorkItem)

	// EnterBlocking must be called by a WorkItem about to block its worker goroutine on a nested unit of work.
	// It lets the pool spawn a transient worker so the nesting does not starve the pool of capacity.
	EnterBlocking()

	// ExitBlocking must be called when a worker goroutine that called EnterBlocking has stopped waiting on its
	// nested unit of work.
	ExitBlocking()
}
