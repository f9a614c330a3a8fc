// gtask is a Go library that re-implements the asynchronous task primitive at the heart of GLib's GTask/GIO stack:
// an object that bridges a producer of a single deferred result to a consumer running on a specific event-loop
// context, optionally offloading work to a worker-thread pool, with cancellation, priority, single-completion, and
// lifetime guarantees.
// This top-level package is just a stub.
// For main functionality, see:
//   - For types and interfaces: [github.com/Izzette/go-gtask/api/types]
//   - For the task primitive: [github.com/Izzette/go-gtask/gtask]
//   - For worker pools: [github.com/Izzette/go-gtask/workerpool]
//   - For the main-context/event-loop abstraction: [github.com/Izzette/go-gtask/mainctx]
//   - For cancellation tokens: [github.com/Izzette/go-gtask/cancellable]
//   - For the error taxonomy: [github.com/Izzette/go-gtask/api/taskerrors]
package gtask
