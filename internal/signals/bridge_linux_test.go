//go:build linux

package signals

import (
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// raiseAndSettle sends sig to the current process and waits until its bit
// shows up in the mask, so tests are not at the mercy of delivery timing.
func raiseAndSettle(t *testing.T, b *Bridge, sig syscall.Signal) {
	t.Helper()
	if err := syscall.Kill(syscall.Getpid(), sig); err != nil {
		t.Fatalf("kill(%v): %v", sig, err)
	}
	bit := uint64(1) << uint(sig)
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadUint64(&b.mask)&bit == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("signal %v never reached the mask", sig)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDeliveredSignalReachesWait(t *testing.T) {
	b := New()
	defer b.Stop()
	if err := b.Register(syscall.SIGUSR1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	raiseAndSettle(t, b, syscall.SIGUSR1)
	if n := b.Wait(time.Second); n != int(syscall.SIGUSR1) {
		t.Errorf("Wait = %d, want %d", n, syscall.SIGUSR1)
	}
}

func TestDeliveredRepeatsCoalesce(t *testing.T) {
	b := New()
	defer b.Stop()
	if err := b.Register(syscall.SIGUSR2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	raiseAndSettle(t, b, syscall.SIGUSR2)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	// Give the second delivery time to reach the mask before draining, so
	// it cannot sneak in after the first Wait and look like a queued repeat.
	time.Sleep(100 * time.Millisecond)
	if n := b.Wait(time.Second); n != int(syscall.SIGUSR2) {
		t.Errorf("first Wait = %d, want %d", n, syscall.SIGUSR2)
	}
	if n := b.Wait(50 * time.Millisecond); n != 0 {
		t.Errorf("second Wait = %d, want 0", n)
	}
}

func TestDeliveredSignalsDrainLowestFirst(t *testing.T) {
	b := New()
	defer b.Stop()
	if err := b.Register(syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM); err != nil {
		t.Fatalf("Register: %v", err)
	}
	raiseAndSettle(t, b, syscall.SIGTERM)
	raiseAndSettle(t, b, syscall.SIGUSR2)
	raiseAndSettle(t, b, syscall.SIGUSR1)
	want := []syscall.Signal{syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM}
	for i, w := range want {
		if n := b.Wait(time.Second); n != int(w) {
			t.Fatalf("Wait %d = %d, want %d", i, n, w)
		}
	}
}

func TestStopEndsDelivery(t *testing.T) {
	b := New()
	if err := b.Register(syscall.SIGUSR1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	b.Stop()
	// No signal is raised here: after Stop the default disposition would
	// apply. Waiting on a stopped bridge must simply time out.
	if n := b.Wait(50 * time.Millisecond); n != 0 {
		t.Errorf("Wait after Stop = %d, want 0", n)
	}
}
