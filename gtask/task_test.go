package gtask

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Izzette/go-gtask/api/taskerrors"
	"github.com/Izzette/go-gtask/cancellable"
	"github.com/Izzette/go-gtask/mainctx"
	"github.com/Izzette/go-gtask/workerpool"
)

// newRunningContext creates and starts a mainctx.Context, pushing it as the calling goroutine's thread-default so
// New can capture it implicitly, mirroring the scenarios in spec.md §8 where the producer constructs a Task while
// its own loop is thread-default.
func newRunningContext(t *testing.T) *mainctx.Context {
	t.Helper()

	ctx := mainctx.New()
	ctx.Start()
	mainctx.PushThreadDefault(ctx)
	t.Cleanup(func() {
		mainctx.PopThreadDefault()
		ctx.Close()
	})

	return ctx
}

// TestBasicScenario implements spec.md §8 scenario 1.
func TestBasicScenario(t *testing.T) {
	ctx := newRunningContext(t)

	var out int64
	var destroyed atomic.Int32
	done := make(chan struct{})

	task := New[struct{}](ctx, WithCallback[struct{}](func(tk *Task[struct{}]) {
		v, err := tk.PropagateInt()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		out = v
		close(done)
	}))
	task.SetTaskData("payload", func(any) { destroyed.Add(1) })

	const magic = 42
	task.ReturnInt(magic)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	if out != magic {
		t.Errorf("expected out == %d, got %d", magic, out)
	}

	task.SetTaskData(nil, nil)
	if destroyed.Load() != 1 {
		t.Errorf("expected destroy notify to fire exactly once, got %d", destroyed.Load())
	}

	time.Sleep(10 * time.Millisecond)
	if !task.Completed() {
		t.Error("expected task to be completed")
	}
}

// TestErrorScenario implements spec.md §8 scenario 2.
func TestErrorScenario(t *testing.T) {
	ctx := newRunningContext(t)

	var firstDestroyed, secondDestroyed atomic.Int32
	done := make(chan struct{})

	task := New[struct{}](ctx, WithCallback[struct{}](func(tk *Task[struct{}]) {
		_, err := tk.PropagateInt()
		if err == nil {
			t.Error("expected an error")
		} else if err.Error() != "Failed" {
			t.Errorf("expected error message %q, got %q", "Failed", err.Error())
		}
		close(done)
	}))

	task.SetTaskData("first", func(any) { firstDestroyed.Add(1) })
	task.SetTaskData("second", func(any) { secondDestroyed.Add(1) })
	if firstDestroyed.Load() != 1 {
		t.Fatalf("expected first task_data destroy notify on replace, got %d", firstDestroyed.Load())
	}

	task.ReturnError(taskerrors.Failed, "Failed")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	task.SetTaskData(nil, nil)
	if secondDestroyed.Load() != 1 {
		t.Errorf("expected second task_data destroy notify at finalize-equivalent replace, got %d", secondDestroyed.Load())
	}
}

// TestPriorityScenario implements spec.md §8 scenario 3 and the "Priority order" testable property.
func TestPriorityScenario(t *testing.T) {
	ctx := mainctx.New()

	var mu sync.Mutex
	var order []string
	var counter int
	record := func(label string) {
		mu.Lock()
		defer mu.Unlock()
		counter++
		order = append(order, label)
	}

	var wg sync.WaitGroup
	wg.Add(3)

	t1 := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) { record("default"); wg.Done() }))
	t2 := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) { record("high"); wg.Done() }))
	t3 := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) { record("low"); wg.Done() }))

	t2.SetPriority(-10)
	t3.SetPriority(10)

	t1.ReturnBoolean(true)
	t2.ReturnBoolean(true)
	t3.ReturnBoolean(true)

	ctx.Start()
	defer ctx.Close()

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	expected := []string{"high", "default", "low"}
	for i, label := range expected {
		if order[i] != label {
			t.Fatalf("expected order %v, got %v", expected, order)
		}
	}
}

// TestAsyncCancellationScenario implements spec.md §8 scenario 4.
func TestAsyncCancellationScenario(t *testing.T) {
	ctx := newRunningContext(t)
	cancellableTok := cancellable.New()

	callbackGoroutine := make(chan struct{})
	done := make(chan struct{})

	task := New[struct{}](ctx,
		WithCancellable[struct{}](cancellableTok),
		WithCallback[struct{}](func(tk *Task[struct{}]) {
			close(callbackGoroutine)
			_, err := tk.PropagateInt()
			if !taskerrors.IsCancelled(err) {
				t.Errorf("expected a cancelled error, got %v", err)
			}
			close(done)
		}),
	)
	task.SetReturnOnCancel(true)

	// Never-completing offloaded work: the worker just blocks until the test cleans up.
	pool := workerpool.New(2)
	pool.Start()
	defer pool.Close()
	blocked := make(chan struct{})
	task.RunInThread(pool, func(tk *Task[struct{}]) {
		<-blocked
		tk.ReturnInt(99) // suppressed: cancellation wins the race
	})

	ctx.Attach(mainctx.NewTimeout(50*time.Millisecond, cancellableTok.Cancel), 0)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran after cancellation")
	}

	// completed flips only after the callback returns, which may be just after done is closed.
	time.Sleep(10 * time.Millisecond)
	if !task.Completed() {
		t.Error("expected task to be completed")
	}
	close(blocked)
}

// TestReturnOnCancelScenario implements spec.md §8 scenario 5.
func TestReturnOnCancelScenario(t *testing.T) {
	ctx := newRunningContext(t)
	cancellableTok := cancellable.New()

	done := make(chan struct{})
	task := New[struct{}](ctx,
		WithCancellable[struct{}](cancellableTok),
		WithCallback[struct{}](func(tk *Task[struct{}]) {
			_, err := tk.PropagateInt()
			if !taskerrors.IsCancelled(err) {
				t.Errorf("expected cancelled error, got %v", err)
			}
			close(done)
		}),
	)
	task.SetReturnOnCancel(true)

	pool := workerpool.New(1)
	pool.Start()
	defer pool.Close()

	finishMutex := make(chan struct{})
	task.RunInThread(pool, func(tk *Task[struct{}]) {
		<-finishMutex
		tk.ReturnInt(42)
	})

	cancellableTok.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran promptly after cancellation")
	}

	if !task.ThreadCancelled() {
		t.Error("expected ThreadCancelled to be true")
	}

	close(finishMutex)
	time.Sleep(20 * time.Millisecond)
	if v, _ := task.PropagateInt(); v != 0 {
		t.Errorf("expected the worker's late ReturnInt to be suppressed, got %d", v)
	}
}

// TestReturnPointerMemoryScenario implements spec.md §8 scenario 6.
func TestReturnPointerMemoryScenario(t *testing.T) {
	ctx := newRunningContext(t)

	refcount := 3
	dec := func(any) { refcount-- }

	t.Run("not propagated", func(t *testing.T) {
		done := make(chan struct{})
		task := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) { close(done) }))
		task.ReturnPointer("obj", dec)
		<-done
		runGC(task)
		if refcount != 2 {
			t.Errorf("expected finalizer to decrement refcount, got %d", refcount)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		done := make(chan struct{})
		var propagated any
		task := New[struct{}](ctx, WithCallback[struct{}](func(tk *Task[struct{}]) {
			v, err := tk.PropagatePointer()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			propagated = v
			close(done)
		}))
		task.ReturnPointer("obj2", dec)
		<-done
		runGC(task)
		if refcount != 2 {
			t.Errorf("expected propagated pointer's destructor to not run, got refcount %d", refcount)
		}
		if propagated != "obj2" {
			t.Errorf("expected propagated value obj2, got %v", propagated)
		}
	})
}

// TestDoubleReturnIsDiagnosed implements the "Single completion" testable property.
func TestDoubleReturnIsDiagnosed(t *testing.T) {
	var violations atomic.Int32
	SetDiagnosticLogger(func(sev Severity, err error) {
		var cv *taskerrors.ContractViolation
		if errors.As(err, &cv) {
			violations.Add(1)
		}
	})
	t.Cleanup(func() { SetDiagnosticLogger(nil) })

	ctx := newRunningContext(t)
	task := New[struct{}](ctx)
	task.ReturnInt(1)
	task.ReturnInt(2)

	time.Sleep(10 * time.Millisecond)
	if violations.Load() != 1 {
		t.Errorf("expected exactly one contract violation diagnostic, got %d", violations.Load())
	}
}

// TestCancellationOverridesStoredResult implements the "Cancellation override" testable property.
func TestCancellationOverridesStoredResult(t *testing.T) {
	ctx := newRunningContext(t)
	cancellableTok := cancellable.New()

	task := New[struct{}](ctx, WithCancellable[struct{}](cancellableTok))
	task.ReturnInt(7)
	cancellableTok.Cancel()

	_, err := task.PropagateInt()
	if !taskerrors.IsCancelled(err) {
		t.Errorf("expected cancelled error despite stored value, got %v", err)
	}
}

// TestDeferredCallback implements the "Deferred callback" testable property: a Return* call made inside a Source on
// the Task's Context, in the same iteration as New, must not invoke the callback before that Source returns.
func TestDeferredCallback(t *testing.T) {
	ctx := newRunningContext(t)

	var callbackRan, calledBeforeReturn atomic.Bool
	checked := make(chan struct{})
	ctx.Attach(mainctx.NewIdle(func() {
		defer close(checked)
		task := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) {
			callbackRan.Store(true)
		}))
		task.ReturnInt(1)
		calledBeforeReturn.Store(callbackRan.Load())
	}), 0)
	<-checked

	if calledBeforeReturn.Load() {
		t.Fatal("callback ran before Return* returned to the caller")
	}
}

// TestFinalizeRunsTaskDataDestroy implements spec.md §3's "task_data carries an optional destructor invoked when
// the payload is replaced or the Task is finalized" invariant: finalizeTask must run the destroy-notify even when
// the caller never replaces or manually clears task_data, mirroring g_task_finalize's unconditional call of the
// stored GDestroyNotify.
func TestFinalizeRunsTaskDataDestroy(t *testing.T) {
	ctx := newRunningContext(t)

	var destroyed atomic.Int32
	done := make(chan struct{})

	task := New[struct{}](ctx, WithCallback[struct{}](func(*Task[struct{}]) { close(done) }))
	task.SetTaskData("payload", func(any) { destroyed.Add(1) })
	task.ReturnInt(1)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	if destroyed.Load() != 0 {
		t.Fatalf("expected destroy notify not to have fired yet, got %d", destroyed.Load())
	}

	runGC(task)
	if destroyed.Load() != 1 {
		t.Errorf("expected finalize to run the task_data destroy notify exactly once, got %d", destroyed.Load())
	}
}

func runGC(t *Task[struct{}]) {
	_ = t
	// Finalizer behavior is exercised by calling finalizeTask directly rather than forcing a GC cycle, since
	// runtime.GC() timing around SetFinalizer is not deterministic enough for a unit test.
	finalizeTask(t)
}
