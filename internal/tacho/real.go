//go:build linux

package tacho

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Device counts rising edges on a tachometer line of a GPIO character
// device. The edge handler runs on the library's event goroutine and only
// bumps an atomic counter; all arithmetic happens in RPM.
type Device struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	pulses uint64 // atomic

	mu        sync.Mutex
	now       func() time.Time
	lastAt    time.Time
	lastCount uint64
}

// NewDevice requests the tachometer line as a pulled-up input with
// rising-edge detection. Fan tach outputs are open collector, so the pull-up
// supplies the high level.
func NewDevice(chipName string, offset int) (*Device, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	d := &Device{chip: chip, now: time.Now}
	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(d.onEdge))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tach line %d: %w", offset, err)
	}
	d.line = line
	d.lastAt = d.now()
	return d, nil
}

func (d *Device) onEdge(gpiocdev.LineEvent) {
	atomic.AddUint64(&d.pulses, 1)
}

// RPM returns the average speed since the previous call.
func (d *Device) RPM() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := atomic.LoadUint64(&d.pulses)
	at := d.now()
	rpm := rpmFromDelta(count-d.lastCount, at.Sub(d.lastAt))
	d.lastCount = count
	d.lastAt = at
	return rpm
}

// Close releases the tachometer line and the chip.
func (d *Device) Close() error {
	var errs []error
	if d.line != nil {
		if err := d.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tach line: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
