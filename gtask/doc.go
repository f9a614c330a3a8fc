// Package gtask implements Task, a one-shot future bridging a producer of a single deferred result to a consumer
// running on a specific [github.com/Izzette/go-gtask/mainctx.Context], optionally offloading the producer's work to
// a [github.com/Izzette/go-gtask/workerpool.Pool], modeled on GLib's GTask.
//
// A Task is constructed with [New], configured with the Set* methods, and completed with exactly one of the
// Return* methods. The captured Context dispatches the Task's callback, after which the consumer calls the matching
// Propagate* method to extract the result.
package gtask
