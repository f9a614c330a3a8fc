package mainctx

import (
	"testing"
	"time"
)

func TestTimeoutSourceFiresAfterDuration(t *testing.T) {
	ctx := New()
	ctx.Start()
	defer ctx.Close()

	start := time.Now()
	done := make(chan time.Time, 1)
	ctx.Attach(NewTimeout(30*time.Millisecond, func() {
		done <- time.Now()
	}), 0)

	select {
	case fired := <-done:
		if fired.Sub(start) < 25*time.Millisecond {
			t.Fatalf("timeout fired too early: %v", fired.Sub(start))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout source never fired")
	}
}

func TestTimeoutSourceRemoveBeforeFireSuppressesRun(t *testing.T) {
	ctx := New()
	ctx.Start()
	defer ctx.Close()

	done := make(chan struct{}, 1)
	src := NewTimeout(20*time.Millisecond, func() { close(done) })
	ctx.Attach(src, 0)
	src.Remove()

	select {
	case <-done:
		t.Fatal("expected removed timeout to not fire")
	case <-time.After(60 * time.Millisecond):
	}
}
