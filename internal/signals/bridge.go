// Package signals converts asynchronous OS signals into values a polling
// control loop can consume one per tick. Pending signals are recorded as
// bits in a shared mask, so repeats of a signal that arrive before the loop
// gets to them coalesce into a single observation instead of queueing.
package signals

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Bridge carries signals from the OS delivery goroutine to a single polling
// consumer. Signal numbers must fit a 64-bit mask, so only numbers in
// (0, 64) can be registered; 0 is reserved to mean "nothing arrived".
type Bridge struct {
	mask uint64 // pending-signal bits, atomic access only

	wake chan struct{} // capacity 1; a send may be dropped, the mask is authoritative
	ch   chan os.Signal
	quit chan struct{}

	registered bool
	stopOnce   sync.Once
}

// New returns an idle Bridge. Nothing is delivered until Register is called.
func New() *Bridge {
	return &Bridge{
		wake: make(chan struct{}, 1),
		ch:   make(chan os.Signal, 4),
		quit: make(chan struct{}),
	}
}

// Register subscribes the bridge to the given signals and starts the
// forwarding goroutine. It must be called exactly once with at least one
// signal; every signal must carry a number in (0, 64).
func (b *Bridge) Register(sigs ...os.Signal) error {
	if b.registered {
		return errors.New("signal bridge already registered")
	}
	if len(sigs) == 0 {
		return errors.New("no signals to register")
	}
	for _, sig := range sigs {
		num, ok := sig.(syscall.Signal)
		if !ok || num <= 0 || num >= 64 {
			return fmt.Errorf("signal %v cannot be represented as a mask bit", sig)
		}
	}
	b.registered = true
	signal.Notify(b.ch, sigs...)
	go b.forward()
	return nil
}

// Wait blocks until a registered signal is pending or the timeout elapses.
// It returns the lowest-numbered pending signal, clearing exactly that bit,
// or 0 on timeout. Only one goroutine may call Wait.
func (b *Bridge) Wait(timeout time.Duration) int {
	if n := b.take(); n != 0 {
		return n
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-b.wake:
			if n := b.take(); n != 0 {
				return n
			}
			// Stale wakeup: the bit it announced was consumed before this
			// Wait started. Sit out the rest of the slot.
		case <-timer.C:
			return b.take()
		}
	}
}

// Stop unsubscribes from signal delivery and ends the forwarding goroutine.
// It is idempotent and safe to call even if Register never succeeded.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		signal.Stop(b.ch)
		close(b.quit)
	})
}

func (b *Bridge) forward() {
	for {
		select {
		case sig := <-b.ch:
			if num, ok := sig.(syscall.Signal); ok {
				b.post(int(num))
			}
		case <-b.quit:
			return
		}
	}
}

// post sets the signal's mask bit and nudges the waiter. Setting a bit that
// is already set is the coalescing case and needs no wakeup of its own,
// though sending one anyway is harmless.
func (b *Bridge) post(n int) {
	bit := uint64(1) << uint(n)
	for {
		old := atomic.LoadUint64(&b.mask)
		if old&bit != 0 {
			break
		}
		if atomic.CompareAndSwapUint64(&b.mask, old, old|bit) {
			break
		}
	}
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// take clears and returns the lowest-numbered pending signal, or 0 if the
// mask is empty.
func (b *Bridge) take() int {
	for {
		old := atomic.LoadUint64(&b.mask)
		if old == 0 {
			return 0
		}
		n := bits.TrailingZeros64(old)
		if atomic.CompareAndSwapUint64(&b.mask, old, old&^(uint64(1)<<uint(n))) {
			return n
		}
	}
}
