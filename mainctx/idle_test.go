package mainctx

import (
	"sync/atomic"
	"testing"
)

func TestIdleSourceRunsOnce(t *testing.T) {
	var calls atomic.Int32
	src := NewIdle(func() { calls.Add(1) })

	src.Dispatch()
	src.Dispatch()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", calls.Load())
	}
}

func TestIdleSourceDispatchReturnsFalse(t *testing.T) {
	src := NewIdle(func() {})
	if src.Dispatch() {
		t.Fatal("expected one-shot idle source to return false from Dispatch")
	}
}

func TestIdleSourceRemoveBeforeDispatchSuppressesRun(t *testing.T) {
	var calls atomic.Int32
	src := NewIdle(func() { calls.Add(1) })
	src.Remove()
	src.Dispatch()

	if calls.Load() != 0 {
		t.Fatalf("expected removed source to not run, got %d calls", calls.Load())
	}
}

func TestIdleSourceNameAndPriorityFreezeOnAttach(t *testing.T) {
	src := NewIdle(func() {})
	src.SetName("probe")
	src.SetPriority(5)

	ctx := New()
	ctx.Attach(src, 7)

	if src.Name() != "probe" {
		t.Fatalf("expected name set before attach to stick, got %q", src.Name())
	}
	if src.Priority() != 7 {
		t.Fatalf("expected Attach's priority to win, got %d", src.Priority())
	}

	src.SetName("ignored")
	src.SetPriority(99)
	if src.Name() != "probe" || src.Priority() != 7 {
		t.Fatal("expected SetName/SetPriority to be no-ops after attach")
	}
}
