package types

// HandlerID identifies a registered cancellation observer, returned by Cancellable.Connect and accepted by
// Cancellable.Disconnect.
type HandlerID uint64

// Cancellable is a one-way flag plus an observer registry, shared between a producer and the consumers that want to
// abort it. Once cancelled, a Cancellable never returns to the pending state.
type Cancellable interface {
	// IsCancelled reports whether Cancel has been called.
	IsCancelled() bool

	// Cancel flips the Cancellable to the cancelled state, exactly once, and synchronously invokes every currently
	// connected handler on the calling goroutine. Calling Cancel more than once is a safe no-op after the first call.
	Cancel()

	// Connect registers handler to be invoked (on the goroutine that calls Cancel) the first time the Cancellable is
	// cancelled. If the Cancellable is already cancelled, handler is invoked synchronously before Connect returns.
	// Connect returns a HandlerID that can be passed to Disconnect.
	Connect(handler func()) HandlerID

	// Disconnect removes a previously registered handler. It is a no-op if the handler has already fired or was
	// already disconnected.
	Disconnect(id HandlerID)
}

// RefCounted models the module's reference-counting convention for source objects and cancellables that are kept
// alive across a Task's lifetime, including across a thread-pool offload.
type RefCounted interface {
	// Ref increments the reference count and returns the receiver, to allow chaining at the call site.
	Ref() RefCounted

	// Unref decrements the reference count, releasing the underlying resource when it reaches zero.
	Unref()
}
