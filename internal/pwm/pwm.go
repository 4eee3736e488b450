// Package pwm drives a fan through the Linux sysfs PWM interface.
// The real implementation writes pwmchip attribute files.
// The fake implementation records writes for tests.
package pwm

// Polarity selects the active level of the PWM output.
type Polarity string

const (
	// Normal drives the duty portion of each period high.
	Normal Polarity = "normal"
	// Inversed drives the duty portion low. The sysfs interface spells it
	// with a d.
	Inversed Polarity = "inversed"
)

// Actuator controls one PWM output channel. Register values are written
// through unchanged; the kernel rejects a duty_cycle larger than the
// current period.
type Actuator interface {
	// SetPeriod sets the period register.
	SetPeriod(uint32) error

	// SetDutyCycle sets the active-time register.
	SetDutyCycle(uint32) error

	// SetPolarity selects the active level. Most chips only honor this
	// while the channel is disabled.
	SetPolarity(Polarity) error

	// SetEnabled starts or stops the output.
	SetEnabled(bool) error

	// Close releases the channel.
	Close() error
}
