//go:build !linux

package tacho

import "errors"

// Device is not available on non-Linux platforms.
type Device struct{}

// NewDevice returns an error on non-Linux platforms.
func NewDevice(chipName string, offset int) (*Device, error) {
	return nil, errors.New("tacho: not supported on this platform (requires Linux)")
}

// RPM is not implemented on non-Linux platforms.
func (d *Device) RPM() int { return 0 }

// Close is not implemented on non-Linux platforms.
func (d *Device) Close() error { return nil }
