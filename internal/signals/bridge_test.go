package signals

import (
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type fakeSignal struct{}

func (fakeSignal) String() string { return "fake" }
func (fakeSignal) Signal()        {}

func TestRegisterRejectsBadInput(t *testing.T) {
	t.Run("no signals", func(t *testing.T) {
		b := New()
		defer b.Stop()
		if err := b.Register(); err == nil {
			t.Error("expected error for empty registration")
		}
	})
	t.Run("not a numeric signal", func(t *testing.T) {
		b := New()
		defer b.Stop()
		if err := b.Register(fakeSignal{}); err == nil {
			t.Error("expected error for non-numeric signal")
		}
	})
	t.Run("number zero", func(t *testing.T) {
		b := New()
		defer b.Stop()
		if err := b.Register(syscall.Signal(0)); err == nil {
			t.Error("expected error for signal 0")
		}
	})
	t.Run("number too large", func(t *testing.T) {
		b := New()
		defer b.Stop()
		if err := b.Register(syscall.Signal(64)); err == nil {
			t.Error("expected error for signal 64")
		}
	})
	t.Run("double registration", func(t *testing.T) {
		b := New()
		defer b.Stop()
		if err := b.Register(syscall.SIGTERM); err != nil {
			t.Fatalf("first Register: %v", err)
		}
		if err := b.Register(syscall.SIGINT); err == nil {
			t.Error("expected error for second registration")
		}
	})
}

func TestWaitTimesOutWhenNothingPending(t *testing.T) {
	b := New()
	defer b.Stop()
	start := time.Now()
	if n := b.Wait(20 * time.Millisecond); n != 0 {
		t.Errorf("Wait = %d, want 0", n)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, before the timeout", elapsed)
	}
}

func TestWaitReturnsPendingImmediately(t *testing.T) {
	b := New()
	defer b.Stop()
	b.post(15)
	start := time.Now()
	if n := b.Wait(time.Second); n != 15 {
		t.Errorf("Wait = %d, want 15", n)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Wait took %v for an already-pending signal", elapsed)
	}
}

func TestRepeatsCoalesce(t *testing.T) {
	b := New()
	defer b.Stop()
	b.post(10)
	b.post(10)
	b.post(10)
	if n := b.Wait(time.Second); n != 10 {
		t.Errorf("first Wait = %d, want 10", n)
	}
	if n := b.Wait(20 * time.Millisecond); n != 0 {
		t.Errorf("second Wait = %d, want 0 (repeats must not queue)", n)
	}
}

func TestDistinctSignalsDrainLowestFirst(t *testing.T) {
	b := New()
	defer b.Stop()
	b.post(12)
	b.post(2)
	b.post(15)
	want := []int{2, 12, 15}
	for i, w := range want {
		if n := b.Wait(time.Second); n != w {
			t.Fatalf("Wait %d = %d, want %d", i, n, w)
		}
	}
	if n := b.Wait(20 * time.Millisecond); n != 0 {
		t.Errorf("extra Wait = %d, want 0", n)
	}
}

func TestPostDuringWaitWakesWaiter(t *testing.T) {
	b := New()
	defer b.Stop()
	got := make(chan int, 1)
	go func() { got <- b.Wait(5 * time.Second) }()
	time.Sleep(20 * time.Millisecond)
	b.post(12)
	select {
	case n := <-got:
		if n != 12 {
			t.Errorf("Wait = %d, want 12", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not wake after post")
	}
}

func TestStaleWakeupDoesNotReturnEarly(t *testing.T) {
	b := New()
	defer b.Stop()
	// Consume the bit but leave its wakeup token behind.
	b.post(10)
	if n := b.take(); n != 10 {
		t.Fatalf("take = %d, want 10", n)
	}
	start := time.Now()
	if n := b.Wait(50 * time.Millisecond); n != 0 {
		t.Errorf("Wait = %d, want 0", n)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned after %v despite the stale wakeup", elapsed)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	b := New()
	if err := b.Register(syscall.SIGTERM); err != nil {
		t.Fatalf("Register: %v", err)
	}
	b.Stop()
	b.Stop()
}

func TestTakeEmptyMask(t *testing.T) {
	b := New()
	defer b.Stop()
	if n := b.take(); n != 0 {
		t.Errorf("take on empty mask = %d, want 0", n)
	}
	if m := atomic.LoadUint64(&b.mask); m != 0 {
		t.Errorf("mask = %#x, want 0", m)
	}
}
