// Package tacho measures fan rotation speed from a tachometer line with
// hardware abstraction. The real implementation counts edges via the Linux
// GPIO character device. The fake implementation allows testing without
// hardware.
package tacho

import "time"

// pulsesPerRevolution is the standard two-pulse fan tachometer output.
const pulsesPerRevolution = 2

// Counter reports fan rotation speed.
type Counter interface {
	// RPM returns the average speed since the previous call, in
	// revolutions per minute.
	RPM() int

	// Close releases the tachometer line.
	Close() error
}

// rpmFromDelta converts an edge count over a sampling window into
// revolutions per minute.
func rpmFromDelta(pulses uint64, dt time.Duration) int {
	if dt <= 0 {
		return 0
	}
	revs := float64(pulses) / pulsesPerRevolution
	return int(revs / dt.Minutes())
}
