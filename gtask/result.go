package gtask

import "github.com/Izzette/go-gtask/api/taskerrors"

// resultKind tags which alternative of [result] is populated, playing the role of the tagged-variant result
// spec.md §9 describes: `{Empty, Int, Bool, Pointer{ptr, free}, Boxed{value, drop}, Error{kind, message}}`.
type resultKind int

const (
	resultPending resultKind = iota
	resultInt
	resultBool
	resultPointer
	resultValue
	resultError
	resultCancelled
)

// pointerResult is the payload of a resultPointer, carrying the free-function spec.md §4.2's return_pointer requires
// to run exactly once if the pointer is never propagated.
type pointerResult struct {
	ptr  any
	free func(any)
}

// result is the Task's internal terminal state: the sum type described by spec.md §3's `result` attribute and §9's
// "Sum-typed result" design note. It is kept as an explicit tagged struct, rather than an `any`, so that pointer and
// value destructors can be dispatched without a type switch over arbitrary payloads.
type result[V any] struct {
	kind resultKind

	intVal  int64
	boolVal bool
	ptr     pointerResult

	value      V
	valueFree  func(V)
	valueIsSet bool

	err *taskerrors.TaskError
}

// hasUnclaimedPointer and hasUnclaimedValue report whether the result carries an owned payload (pointer or value)
// that propagation has not yet claimed and whose destructor must therefore still run on finalization.
func (r *result[V]) hasUnclaimedPointer() bool {
	return r.kind == resultPointer && r.ptr.free != nil
}

func (r *result[V]) hasUnclaimedValue() bool {
	return r.kind == resultValue && r.valueIsSet && r.valueFree != nil
}
