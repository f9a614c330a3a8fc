package gtask

import "github.com/Izzette/go-gtask/api/taskerrors"

// cancelledOverride reports whether propagation must return a cancelled error regardless of the stored result, per
// spec.md §4.5 policy 1. Caller must hold resultMu.
func (t *Task[V]) cancelledOverride() bool {
	return t.checkCancellable.Load() && t.cancellable != nil && t.cancellable.IsCancelled()
}

// PropagateInt extracts an integer result, or an error if the Task failed, was cancelled, or check_cancellable
// overrides a stored value.
func (t *Task[V]) PropagateInt() (int64, error) {
	t.resultMu.Lock()
	defer t.resultMu.Unlock()

	if t.cancelledOverride() {
		t.resultTaken.Store(true)

		return 0, taskerrors.NewCancelledError()
	}

	switch t.result.kind {
	case resultError, resultCancelled:
		return 0, t.result.err
	case resultInt:
		t.resultTaken.Store(true)

		return t.result.intVal, nil
	default:
		reportDiagnostic(SeverityCritical, &taskerrors.ContractViolation{Op: "PropagateInt", SourceTag: t.SourceTag(), Name: t.Name()})

		return 0, nil
	}
}

// PropagateBoolean extracts a boolean result, or an error if the Task failed, was cancelled, or check_cancellable
// overrides a stored value.
func (t *Task[V]) PropagateBoolean() (bool, error) {
	t.resultMu.Lock()
	defer t.resultMu.Unlock()

	if t.cancelledOverride() {
		t.resultTaken.Store(true)

		return false, taskerrors.NewCancelledError()
	}

	switch t.result.kind {
	case resultError, resultCancelled:
		return false, t.result.err
	case resultBool:
		t.resultTaken.Store(true)

		return t.result.boolVal, nil
	default:
		reportDiagnostic(SeverityCritical, &taskerrors.ContractViolation{Op: "PropagateBoolean", SourceTag: t.SourceTag(), Name: t.Name()})

		return false, nil
	}
}

// PropagatePointer extracts a pointer result. On success, ownership transfers to the caller and the Task's
// destructor will not run; on cancellation override, any stored pointer is freed by its destructor before the
// cancelled error is returned, per spec.md §4.5 policy 1.
func (t *Task[V]) PropagatePointer() (any, error) {
	t.resultMu.Lock()
	defer t.resultMu.Unlock()

	if t.cancelledOverride() {
		if t.result.hasUnclaimedPointer() {
			free := t.result.ptr.free
			ptr := t.result.ptr.ptr
			t.result.ptr.free = nil
			free(ptr)
		}
		t.resultTaken.Store(true)

		return nil, taskerrors.NewCancelledError()
	}

	switch t.result.kind {
	case resultError, resultCancelled:
		return nil, t.result.err
	case resultPointer:
		ptr := t.result.ptr.ptr
		t.result.ptr.free = nil
		t.resultTaken.Store(true)

		return ptr, nil
	default:
		reportDiagnostic(SeverityCritical, &taskerrors.ContractViolation{Op: "PropagatePointer", SourceTag: t.SourceTag(), Name: t.Name()})

		return nil, nil
	}
}

// PropagateValue extracts a generically typed result. On success, ownership transfers to the caller and the Task's
// destructor will not run; on cancellation override, any stored value is freed by its destructor before the
// cancelled error is returned, per spec.md §4.5 policy 1.
func (t *Task[V]) PropagateValue() (V, error) {
	t.resultMu.Lock()
	defer t.resultMu.Unlock()

	var zero V

	if t.cancelledOverride() {
		if t.result.hasUnclaimedValue() {
			free := t.result.valueFree
			val := t.result.value
			t.result.valueFree = nil
			free(val)
		}
		t.resultTaken.Store(true)

		return zero, taskerrors.NewCancelledError()
	}

	switch t.result.kind {
	case resultError, resultCancelled:
		return zero, t.result.err
	case resultValue:
		val := t.result.value
		t.result.valueFree = nil
		t.resultTaken.Store(true)

		return val, nil
	default:
		reportDiagnostic(SeverityCritical, &taskerrors.ContractViolation{Op: "PropagateValue", SourceTag: t.SourceTag(), Name: t.Name()})

		return zero, nil
	}
}
