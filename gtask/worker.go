package gtask

import "github.com/Izzette/go-gtask/api/types"

// WorkerFunc is the user-supplied work function offloaded onto a [github.com/Izzette/go-gtask/workerpool.Pool] by
// [Task.RunInThread] or [Task.RunInThreadSync]. It must eventually call one of the Task's Return* methods.
type WorkerFunc[V any] func(task *Task[V])

// workItem adapts a Task plus its WorkerFunc to [types.WorkItem] for submission to a [types.WorkerPool].
type workItem[V any] struct {
	task *Task[V]
	fn   WorkerFunc[V]
}

var _ types.WorkItem = (*workItem[int])(nil)

// Priority implements [types.WorkItem.Priority].
func (w *workItem[V]) Priority() int32 { return w.task.Priority() }

// Run implements [types.WorkItem.Run].
func (w *workItem[V]) Run() { w.fn(w.task) }

// RunInThread implements spec.md §4.6's non-blocking entry point: fn is enqueued on pool and runs on a worker
// goroutine; completion goes through the Task's normal dispatch once fn calls a Return* method.
func (t *Task[V]) RunInThread(pool types.WorkerPool, fn WorkerFunc[V]) {
	pool.Enqueue(&workItem[V]{task: t, fn: fn})
}

// RunInThreadSync implements spec.md §4.6's blocking entry point: fn runs on a worker goroutine while the caller
// waits for the Task's terminal result. Callback dispatch is skipped (the Task is marked synchronous), but
// completed is still set once fn's Return* call lands.
//
// The caller blocks on a channel rather than the pool itself, so it registers with [types.WorkerPool.EnterBlocking]
// around the wait — the nested-blocking accounting spec.md §4.6 "Nesting safety" requires when RunInThreadSync is
// itself called from inside another pool worker.
func (t *Task[V]) RunInThreadSync(pool types.WorkerPool, fn WorkerFunc[V]) {
	t.synchronous.Store(true)

	done := make(chan struct{})
	pool.Enqueue(&workItem[V]{
		task: t,
		fn: func(tt *Task[V]) {
			defer close(done)
			fn(tt)
		},
	})

	pool.EnterBlocking()
	defer pool.ExitBlocking()
	<-done
}
