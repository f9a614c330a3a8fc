// Package taskerrors defines the generic error-kind taxonomy consumed by the task core, and the sentinel/contract
// violation errors it can produce.
//
// The real GLib stack translates a much larger set of domain-qualified error codes (see gio/gioerror.c for the
// GIOErrorEnum <-> errno/platform mapping); this package models only the shape the task core itself depends on: a
// domain-qualified Kind plus a human-readable message, with Cancelled and Unknown/Failed singled out because the
// core branches on them, and everything else treated as an opaque pass-through.
package taskerrors

import "fmt"

// Kind identifies the category of a [TaskError], analogous to a GLib error domain/code pair flattened into a single
// comparable value.
type Kind string

const (
	// Cancelled is the Kind stored when a Task's result is overridden or short-circuited by cancellation.
	Cancelled Kind = "cancelled"

	// Failed is the generic catch-all Kind for a producer-reported error that doesn't belong to a more specific
	// domain.
	Failed Kind = "failed"

	// Unknown is used when a Kind cannot be determined, for example when wrapping a foreign error of unknown origin.
	Unknown Kind = "unknown"
)

// Stop is a sentinel error for signalling cooperative early termination that is not a failure. No package in this
// module returns it or checks for it; [github.com/Izzette/go-gtask/api/types.WorkItem.Run] returns no error.
//
//nolint:errname
const Stop = constantError("stop")

// TaskError is the error type stored by [github.com/Izzette/go-gtask/gtask.Task.ReturnError] and surfaced by
// Propagate*. It carries a [Kind] so callers can distinguish categories of failure with [errors.Is] against another
// *TaskError of the wanted Kind (for example NewError(Cancelled, "")), with [IsCancelled], or by comparing Kind()
// directly.
type TaskError struct {
	kind Kind
	msg  string
}

// NewError creates a TaskError of the given Kind with the given message.
func NewError(kind Kind, msg string) *TaskError {
	return &TaskError{kind: kind, msg: msg}
}

// NewPrefixedError creates a TaskError that preserves inner's Kind (if inner is a *TaskError; otherwise Unknown) and
// whose message is prefix concatenated with inner's message, mirroring
// g_task_return_new_error()-with-prefix semantics (spec: return_prefixed_error).
func NewPrefixedError(inner error, prefixFormat string, args ...any) *TaskError {
	prefix := fmt.Sprintf(prefixFormat, args...)
	kind := Unknown
	innerMsg := ""
	if inner != nil {
		innerMsg = inner.Error()
		var te *TaskError
		if asTaskError(inner, &te) {
			kind = te.kind
		}
	}

	return &TaskError{kind: kind, msg: prefix + innerMsg}
}

// NewCancelledError creates a TaskError of Kind Cancelled with a fixed, user-facing message.
func NewCancelledError() *TaskError {
	return &TaskError{kind: Cancelled, msg: "Task was cancelled"}
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return e.msg
}

// Kind returns the error's Kind.
func (e *TaskError) Kind() Kind {
	return e.kind
}

// Is supports errors.Is: it reports true when target is a *TaskError with the same Kind, whatever its message.
func (e *TaskError) Is(target error) bool {
	te, ok := target.(*TaskError)
	if !ok {
		return false
	}

	return e.kind == te.kind
}

// asTaskError unwraps err looking for a *TaskError, the same role as errors.As but kept local to avoid an import
// cycle concern and to keep the zero-arg call sites terse.
func asTaskError(err error, target **TaskError) bool {
	for err != nil {
		if te, ok := err.(*TaskError); ok {
			*target = te

			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}

	return false
}

// IsCancelled reports whether err is a *TaskError of Kind Cancelled.
func IsCancelled(err error) bool {
	var te *TaskError
	if !asTaskError(err, &te) {
		return false
	}

	return te.kind == Cancelled
}

// ContractViolation is the diagnostic reported when the task core detects a broken invariant: a second terminal
// call on the same Task, a Propagate* call that finds no stored result of the matching kind, or finalization of a
// Task that was never returned on (critical when a callback was set, debug-level otherwise).
// Contract violations are never propagated to a consumer; they are reported via the diagnostic channel described in
// [github.com/Izzette/go-gtask/gtask.SetDiagnosticLogger].
type ContractViolation struct {
	// Op names the operation that detected the violation, e.g. "ReturnInt" or "finalize".
	Op string

	// SourceTag, Name identify the offending Task for diagnostics, mirroring spec.md §7's "naming the source object,
	// source tag, and name" requirement.
	SourceTag any
	Name      string
}

// Error implements the error interface.
func (c *ContractViolation) Error() string {
	name := c.Name
	if name == "" {
		name = "<unnamed>"
	}

	return fmt.Sprintf("gtask: contract violation in %s on task %q (tag=%v)", c.Op, name, c.SourceTag)
}
