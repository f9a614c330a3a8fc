package gtask

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Izzette/go-gtask/api/taskerrors"
	"github.com/Izzette/go-gtask/api/types"
	"github.com/Izzette/go-gtask/mainctx"
)

// Task is a one-shot future bridging a producer of a single deferred result to a consumer running on the
// [mainctx.Context] captured at construction, per spec.md §3. Its fields follow the three groups spec.md §5
// describes: construction-immutable (sourceObject, ctx, cancellable, callback), producer-owned-until-terminal
// (priority, name, sourceTag, checkCancellable, task data), and atomically-shared (everReturned, returnOnCancel,
// threadCancelled, completed, resultTaken).
type Task[V any] struct {
	// mu serializes SetReturnOnCancel against the cancellation observer, the only field pair spec.md §9's Open
	// Question calls out as needing a per-Task lock beyond plain atomics.
	mu sync.Mutex

	ctx                     *mainctx.Context
	constructionGeneration  types.GenerationID
	sourceObject            any
	sourceObjectRef         types.RefCounted
	cancellable             types.Cancellable
	cancelHandlerID         types.HandlerID
	callback                Callback[V]

	sourceTag atomic.Value // any
	name      atomic.Value // string
	priority  atomic.Int32

	taskDataMu      sync.Mutex
	taskData        any
	taskDataDestroy func(any)

	checkCancellable atomic.Bool
	returnOnCancel   atomic.Bool
	everReturned     atomic.Bool
	completed        atomic.Bool
	threadCancelled  atomic.Bool
	synchronous      atomic.Bool
	resultTaken      atomic.Bool

	resultMu sync.Mutex
	result   result[V]

	completedObserversMu sync.Mutex
	completedObservers   []func()
}

// New creates a Task bound to ctx, or to [mainctx.Current] if ctx is nil, applying opts in order. The captured
// Context — whichever is in effect at this call — is where the Task's callback will always be dispatched,
// regardless of which thread later calls a Return* method (spec.md §3 "Lifecycle").
func New[V any](ctx *mainctx.Context, opts ...Option[V]) *Task[V] {
	if ctx == nil {
		ctx = mainctx.Current()
	}

	t := &Task[V]{ctx: ctx}
	t.checkCancellable.Store(true)

	for _, opt := range opts {
		opt(t)
	}

	if ctx != nil {
		t.constructionGeneration = ctx.Generation()
	}

	if t.cancellable != nil {
		t.cancelHandlerID = t.cancellable.Connect(t.onCancelled)
	}

	runtime.SetFinalizer(t, finalizeTask[V])

	return t
}

// finalizeTask implements the diagnostics spec.md §3 invariant 2 and §7 require of a dropped Task, and runs any
// still-owned pointer/value destructor per spec.md §8's "Pointer ownership" property.
func finalizeTask[V any](t *Task[V]) {
	if !t.everReturned.Load() {
		severity := SeverityDebug
		if t.callback != nil {
			severity = SeverityCritical
		}
		reportDiagnostic(severity, &taskerrors.ContractViolation{Op: "finalize", SourceTag: t.SourceTag(), Name: t.Name()})
	} else if !t.resultTaken.Load() {
		t.resultMu.Lock()
		if t.result.hasUnclaimedPointer() {
			t.result.ptr.free(t.result.ptr.ptr)
		}
		if t.result.hasUnclaimedValue() {
			t.result.valueFree(t.result.value)
		}
		t.resultMu.Unlock()
	}

	// task_data's destroy notify runs synchronously whenever the payload is replaced (SetTaskData) and, per
	// spec.md §3, unconditionally again at finalization — mirroring g_task_finalize's unconditional call of the
	// stored GDestroyNotify on task_data.
	t.taskDataMu.Lock()
	if t.taskDataDestroy != nil {
		t.taskDataDestroy(t.taskData)
	}
	t.taskDataMu.Unlock()

	if t.sourceObjectRef != nil {
		t.sourceObjectRef.Unref()
	}
	if t.cancellable != nil && t.cancelHandlerID != 0 {
		t.cancellable.Disconnect(t.cancelHandlerID)
	}
}

// SourceObject returns the opaque producer reference set by [WithSourceObject], or nil.
func (t *Task[V]) SourceObject() any {
	return t.sourceObject
}

// SourceTag returns the opaque identifier set by [WithSourceTag], or nil.
func (t *Task[V]) SourceTag() any {
	return t.sourceTag.Load()
}

// Name returns the Task's debug name, or the empty string if unset.
func (t *Task[V]) Name() string {
	if v, ok := t.name.Load().(string); ok {
		return v
	}

	return ""
}

// SetName sets the Task's debug name. Go strings need no owned/static distinction since they are already
// immutable and safe to retain past the caller's stack frame, so it serves both of spec.md §3's `name` forms.
func (t *Task[V]) SetName(name string) {
	t.name.Store(name)
}

// SetStaticName is equivalent to [Task.SetName]; kept as a distinct method to mirror the two constructors
// spec.md §4.1 names (`set_name` / `set_static_name`), even though Go strings make the distinction moot.
func (t *Task[V]) SetStaticName(name string) {
	t.name.Store(name)
}

// Priority returns the Task's dispatch priority. Lower values are more urgent.
func (t *Task[V]) Priority() int32 {
	return t.priority.Load()
}

// SetPriority sets the Task's dispatch priority.
func (t *Task[V]) SetPriority(priority int32) {
	t.priority.Store(priority)
}

// SetSourceTag sets the Task's source_tag, overriding any value given to [New] via [WithSourceTag].
func (t *Task[V]) SetSourceTag(tag any) {
	if tag == nil {
		return
	}
	t.sourceTag.Store(tag)
}

// CheckCancellable reports whether propagation currently overrides a stored result with a cancelled error when the
// bound Cancellable is cancelled.
func (t *Task[V]) CheckCancellable() bool {
	return t.checkCancellable.Load()
}

// SetCheckCancellable sets the check_cancellable flag described in spec.md §3; defaults to true.
func (t *Task[V]) SetCheckCancellable(check bool) {
	t.checkCancellable.Store(check)
}

// Cancellable returns the Task's bound cancellation token, or nil.
func (t *Task[V]) Cancellable() types.Cancellable {
	return t.cancellable
}

// EverReturned reports whether a terminal Return* call has succeeded.
func (t *Task[V]) EverReturned() bool {
	return t.everReturned.Load()
}

// Completed reports whether the completed property has flipped true, which happens strictly after the callback (if
// any) has returned.
func (t *Task[V]) Completed() bool {
	return t.completed.Load()
}

// ThreadCancelled reports whether return_on_cancel fired while a worker was running (spec.md §3).
func (t *Task[V]) ThreadCancelled() bool {
	return t.threadCancelled.Load()
}

// OnCompleted registers fn to run once, after the completed property flips true, on the next turn of the Task's
// captured Context — the "property-change notification" spec.md §9 describes. If the Task has already completed,
// fn runs synchronously before OnCompleted returns.
func (t *Task[V]) OnCompleted(fn func()) {
	t.completedObserversMu.Lock()
	if t.completed.Load() {
		t.completedObserversMu.Unlock()
		fn()

		return
	}
	t.completedObservers = append(t.completedObservers, fn)
	t.completedObserversMu.Unlock()
}

func (t *Task[V]) notifyCompleted() {
	t.completedObserversMu.Lock()
	observers := t.completedObservers
	t.completedObservers = nil
	t.completedObserversMu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// TaskData returns the opaque payload most recently set by [Task.SetTaskData].
func (t *Task[V]) TaskData() any {
	t.taskDataMu.Lock()
	defer t.taskDataMu.Unlock()

	return t.taskData
}

// SetTaskData replaces the Task's opaque payload. If a previous destroy function was registered, it is invoked
// synchronously on the previous data before the new data is stored, per spec.md §4.1.
func (t *Task[V]) SetTaskData(data any, destroy func(any)) {
	t.taskDataMu.Lock()
	defer t.taskDataMu.Unlock()

	if t.taskDataDestroy != nil {
		t.taskDataDestroy(t.taskData)
	}
	t.taskData = data
	t.taskDataDestroy = destroy
}

// AttachSource configures source with the Task's current priority and — if source has no name of its own — the
// Task's name, then attaches it to the Task's captured Context. This is the mechanism spec.md §4.1 gives producers
// to run their own work (an idle callback, a timeout, an I/O watch) inside the Task's context.
func (t *Task[V]) AttachSource(source types.Source) {
	source.SetPriority(t.Priority())
	if source.Name() == "" {
		source.SetName(t.Name())
	}
	if t.ctx != nil {
		t.ctx.Attach(source, t.Priority())
	}
}

// onCancelled is connected to the Task's Cancellable at construction. It implements spec.md §4.4's return_on_cancel
// short-circuit: test-and-set thread_cancelled, disarm return_on_cancel, and — if no terminal call has already
// won — store a cancelled result and schedule dispatch. The worker function, if one is running, continues to
// completion; its eventual Return* call is dropped silently (precedence rule (c) in spec.md §9).
func (t *Task[V]) onCancelled() {
	t.mu.Lock()
	armed := t.returnOnCancel.Load()
	if armed {
		t.returnOnCancel.Store(false)
	}
	t.mu.Unlock()

	if !armed {
		return
	}
	if !t.threadCancelled.CompareAndSwap(false, true) {
		return
	}
	if !t.everReturned.CompareAndSwap(false, true) {
		// A terminal call already won, so cancellation did not short-circuit anything (precedence rule (b)).
		t.threadCancelled.Store(false)

		return
	}

	t.resultMu.Lock()
	t.result = result[V]{kind: resultCancelled, err: taskerrors.NewCancelledError()}
	t.resultMu.Unlock()

	if t.synchronous.Load() {
		t.completed.Store(true)
		t.notifyCompleted()

		return
	}
	t.scheduleDispatch()
}

// SetReturnOnCancel implements spec.md §4.1's set_return_on_cancel: the transition is serialized against the
// cancellation observer through mu, so a caller racing [Task.onCancelled] either wins cleanly or observes that
// cancellation has already disarmed the flag and cannot be re-armed (spec.md §3 invariant 6).
func (t *Task[V]) SetReturnOnCancel(enable bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enable && t.cancellable != nil && t.cancellable.IsCancelled() {
		return false
	}

	t.returnOnCancel.Store(enable)

	return true
}
