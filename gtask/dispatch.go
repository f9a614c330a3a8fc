package gtask

import "github.com/Izzette/go-gtask/mainctx"

// scheduleDispatch implements spec.md §4.3: dispatch is an idle source attached to the Task's captured Context at
// the Task's priority. Because [mainctx.Context] serializes its Sources through a single-concurrency
// [github.com/Izzette/go-gtask/workerpool.Pool], an idle attached from inside the Run of another Source can only be
// popped after that Run returns — so "same-iteration" Return* calls are deferred to the next iteration for free,
// satisfying spec.md §4.2's "async APIs never invoke the callback before returning to the caller" contract without
// needing an explicit generation comparison at the call site (constructionGeneration is recorded on Task at
// construction, but nothing compares it). A Return* call made from a goroutine other than the Context's dispatch
// goroutine gets no such deferral: the callback may run before that call returns.
//
// If the Task has no captured Context — constructed with no thread-default in effect — there is nowhere to post an
// idle source, so the callback (if any) runs inline and completion notification fires synchronously instead of on
// "the next turn"; this is a deliberate, documented fallback, not a spec requirement, since a context-less Task has
// no event loop to speak of.
func (t *Task[V]) scheduleDispatch() {
	if t.ctx == nil {
		t.runCallbackAndComplete()

		return
	}

	t.ctx.Attach(mainctx.NewIdle(t.runCallbackAndComplete), t.Priority())
}

// runCallbackAndComplete is the idle source body: invoke the callback (if any), then flip completed and notify
// observers on the following turn, per spec.md §4.3 items 1-2.
func (t *Task[V]) runCallbackAndComplete() {
	if t.callback != nil {
		t.callback(t)
	}

	t.completed.Store(true)

	if t.ctx == nil {
		t.notifyCompleted()

		return
	}

	// Deferring the notification by one more turn lets an observer running synchronously inside the callback still
	// see completed == false, matching the property-change semantics spec.md §4.3 item 2 describes.
	t.ctx.Attach(mainctx.NewIdle(t.notifyCompleted), t.Priority())
}
