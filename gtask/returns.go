package gtask

import "github.com/Izzette/go-gtask/api/taskerrors"

// returnResult implements the common shape of every terminal operation in spec.md §4.2: assert ever_returned is
// false, set it, store r, and schedule dispatch unless the Task is running synchronously (spec.md §3's
// `synchronous` flag, set by [Task.RunInThreadSync]).
//
// If the CAS loses to [Task.onCancelled] having already claimed the terminal slot, the call is dropped. Per
// spec.md §9's precedence rule (c), this is diagnosed only when thread_cancelled is false — i.e. only when the loss
// was a genuine second terminal call rather than cancellation racing a still-running worker.
func (t *Task[V]) returnResult(op string, r result[V]) {
	if !t.everReturned.CompareAndSwap(false, true) {
		if !t.threadCancelled.Load() {
			reportDiagnostic(SeverityCritical, &taskerrors.ContractViolation{Op: op, SourceTag: t.SourceTag(), Name: t.Name()})
		}

		return
	}

	t.resultMu.Lock()
	t.result = r
	t.resultMu.Unlock()

	if t.synchronous.Load() {
		t.completed.Store(true)
		t.notifyCompleted()

		return
	}

	t.scheduleDispatch()
}

// ReturnInt stores an integer result.
func (t *Task[V]) ReturnInt(v int64) {
	t.returnResult("ReturnInt", result[V]{kind: resultInt, intVal: v})
}

// ReturnBoolean stores a boolean result.
func (t *Task[V]) ReturnBoolean(v bool) {
	t.returnResult("ReturnBoolean", result[V]{kind: resultBool, boolVal: v})
}

// ReturnPointer stores an opaque pointer result. free, if non-nil, is invoked exactly once: either at finalization
// if the result is never propagated, or never, if [Task.PropagatePointer] transfers ownership to the caller.
func (t *Task[V]) ReturnPointer(ptr any, free func(any)) {
	t.returnResult("ReturnPointer", result[V]{kind: resultPointer, ptr: pointerResult{ptr: ptr, free: free}})
}

// ReturnValue stores a generically typed result. destroy, if non-nil, is invoked exactly once: either at
// finalization if the result is never propagated, or never, if [Task.PropagateValue] transfers ownership.
func (t *Task[V]) ReturnValue(v V, destroy func(V)) {
	t.returnResult("ReturnValue", result[V]{kind: resultValue, value: v, valueFree: destroy, valueIsSet: true})
}

// ReturnError stores an error result of the given kind.
func (t *Task[V]) ReturnError(kind taskerrors.Kind, msg string) {
	t.returnResult("ReturnError", result[V]{kind: resultError, err: taskerrors.NewError(kind, msg)})
}

// ReturnErrorIfCancelled stores a cancelled-error result and returns true iff the Task's bound Cancellable is
// currently cancelled. It is a no-op returning false if there is no bound Cancellable or it is not cancelled.
func (t *Task[V]) ReturnErrorIfCancelled() bool {
	if t.cancellable == nil || !t.cancellable.IsCancelled() {
		return false
	}

	t.returnResult("ReturnErrorIfCancelled", result[V]{kind: resultCancelled, err: taskerrors.NewCancelledError()})

	return true
}

// ReturnPrefixedError stores an error whose Kind matches inner's (or [taskerrors.Unknown] if inner is not a
// [*taskerrors.TaskError]) and whose message is the formatted prefix concatenated with inner's message.
func (t *Task[V]) ReturnPrefixedError(inner error, prefixFormat string, args ...any) {
	t.returnResult("ReturnPrefixedError", result[V]{kind: resultError, err: taskerrors.NewPrefixedError(inner, prefixFormat, args...)})
}
