// Package sensor provides CPU temperature readings with hardware abstraction.
// The real implementation reads a Linux sysfs thermal zone.
// The fake implementation allows testing without hardware.
package sensor

// Reader reads the current temperature.
type Reader interface {
	// Read returns the temperature in degrees Celsius.
	Read() (float32, error)

	// Close releases sensor resources.
	Close() error
}
