// Package control contains the pure fan-control logic: the temperature to
// duty-cycle curve and the hysteresis state machine around it.
// This package has NO external dependencies (no device I/O, no OS, no time).
// All temperature and duty-cycle arithmetic is single-precision float32.
package control

import "fmt"

// Curve maps a temperature (°C) to a fan duty cycle (fraction of the PWM
// period): a linear ramp between StartTemperature and HighTemperature,
// clamped to MinDutyCycle below and MaxDutyCycle above. StopTemperature sits
// below the ramp; the controller (not the curve) uses it to decide when the
// fan may stop entirely.
//
// A Curve is immutable and only obtainable through NewCurve, so a held value
// is always valid.
type Curve struct {
	stopTemperature  float32 // T0
	startTemperature float32 // T1
	highTemperature  float32 // T2
	minDutyCycle     float32 // Pmin, in (0, 1)
	maxDutyCycle     float32 // Pmax, in (0, 1)
}

// NewCurve validates and builds a Curve. The rules are checked in a fixed
// order (T0 < T1, T1 < T2, Pmin in (0,1), Pmax in (0,1), Pmin < Pmax) and
// the first violated rule produces the single returned error, naming the
// offending configuration key and the value supplied.
func NewCurve(stopTemperature, startTemperature, highTemperature, minDutyCycle, maxDutyCycle float32) (Curve, error) {
	switch {
	case startTemperature <= stopTemperature:
		return Curve{}, fmt.Errorf("start_temperature (%.2f) must be greater than stop_temperature (%.2f)", startTemperature, stopTemperature)
	case highTemperature <= startTemperature:
		return Curve{}, fmt.Errorf("high_temperature (%.2f) must be greater than start_temperature (%.2f)", highTemperature, startTemperature)
	case minDutyCycle <= 0 || minDutyCycle >= 1:
		return Curve{}, fmt.Errorf("min_duty_cycle (%.2f) must be inside (0, 1)", minDutyCycle)
	case maxDutyCycle <= 0 || maxDutyCycle >= 1:
		return Curve{}, fmt.Errorf("max_duty_cycle (%.2f) must be inside (0, 1)", maxDutyCycle)
	case maxDutyCycle <= minDutyCycle:
		return Curve{}, fmt.Errorf("max_duty_cycle (%.2f) must be greater than min_duty_cycle (%.2f)", maxDutyCycle, minDutyCycle)
	}
	return Curve{
		stopTemperature:  stopTemperature,
		startTemperature: startTemperature,
		highTemperature:  highTemperature,
		minDutyCycle:     minDutyCycle,
		maxDutyCycle:     maxDutyCycle,
	}, nil
}

// Map returns the duty cycle for the given temperature. It is pure and
// total: below the ramp it returns MinDutyCycle, above it MaxDutyCycle, and
// it is continuous at both ramp boundaries.
func (c Curve) Map(temperature float32) float32 {
	if temperature < c.startTemperature {
		return c.minDutyCycle
	}
	if temperature > c.highTemperature {
		return c.maxDutyCycle
	}
	return c.minDutyCycle + (c.maxDutyCycle-c.minDutyCycle)*(temperature-c.startTemperature)/(c.highTemperature-c.startTemperature)
}

// StopTemperature returns T0, below which the fan may stop.
func (c Curve) StopTemperature() float32 { return c.stopTemperature }

// StartTemperature returns T1, the ramp floor.
func (c Curve) StartTemperature() float32 { return c.startTemperature }

// HighTemperature returns T2, the ramp ceiling.
func (c Curve) HighTemperature() float32 { return c.highTemperature }

// MinDutyCycle returns Pmin.
func (c Curve) MinDutyCycle() float32 { return c.minDutyCycle }

// MaxDutyCycle returns Pmax.
func (c Curve) MaxDutyCycle() float32 { return c.maxDutyCycle }

// String renders the curve parameters for startup logging.
func (c Curve) String() string {
	return fmt.Sprintf("curve[T0=%.2f°C, T1=%.2f°C, T2=%.2f°C, Pmin=%.2f%%, Pmax=%.2f%%]",
		c.stopTemperature, c.startTemperature, c.highTemperature, c.minDutyCycle*100, c.maxDutyCycle*100)
}
