// Package config loads the fan control policy from an INI file.
//
// All keys live at the top level and all are required. Deployment knobs
// (broker address, HTTP listen address, tach line) are command-line flags
// instead; the file holds only the policy that defines how the fan behaves.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Config is the parsed control policy.
type Config struct {
	// Watch is the thermal zone directory to read temperatures from.
	Watch string
	// Execute is the pwmchip directory whose channel 0 drives the fan.
	Execute string
	// Interval is the control tick period.
	Interval time.Duration

	// LagTimeCycle is the number of non-rising ticks the fan speed is held.
	LagTimeCycle int
	// MaxSpeedTimeCycle is the number of ticks a max-speed request lasts.
	MaxSpeedTimeCycle int

	// The five curve parameters, passed to control.NewCurve untouched.
	StopTemperature  float32
	StartTemperature float32
	HighTemperature  float32
	MinDutyCycle     float32
	MaxDutyCycle     float32

	// PWMFrequency is written to the PWM period register unchanged; duty
	// register values are computed against it.
	PWMFrequency uint32
}

// Load reads and parses the file at path. The first missing or malformed
// key produces the error, naming the key and the supplied value. Range and
// ordering checks on the curve parameters are left to control.NewCurve.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	sec := f.Section("")

	c := &Config{}
	if c.Watch, err = requiredString(sec, "watch"); err != nil {
		return nil, err
	}
	if c.Execute, err = requiredString(sec, "execute"); err != nil {
		return nil, err
	}

	intervalMS, err := requiredInt(sec, "interval")
	if err != nil {
		return nil, err
	}
	if intervalMS <= 0 {
		return nil, fmt.Errorf("key %q: %d must be positive", "interval", intervalMS)
	}
	c.Interval = time.Duration(intervalMS) * time.Millisecond

	if c.LagTimeCycle, err = requiredCount(sec, "lag_time_cycle"); err != nil {
		return nil, err
	}
	if c.MaxSpeedTimeCycle, err = requiredCount(sec, "max_speed_time_cycle"); err != nil {
		return nil, err
	}

	if c.StopTemperature, err = requiredFloat(sec, "stop_temperature"); err != nil {
		return nil, err
	}
	if c.StartTemperature, err = requiredFloat(sec, "start_temperature"); err != nil {
		return nil, err
	}
	if c.HighTemperature, err = requiredFloat(sec, "high_temperature"); err != nil {
		return nil, err
	}
	if c.MinDutyCycle, err = requiredFloat(sec, "min_duty_cycle"); err != nil {
		return nil, err
	}
	if c.MaxDutyCycle, err = requiredFloat(sec, "max_duty_cycle"); err != nil {
		return nil, err
	}

	freq, err := requiredInt(sec, "pwm_frequency")
	if err != nil {
		return nil, err
	}
	if freq <= 0 {
		return nil, fmt.Errorf("key %q: %d must be positive", "pwm_frequency", freq)
	}
	c.PWMFrequency = uint32(freq)

	return c, nil
}

func requiredString(sec *ini.Section, name string) (string, error) {
	if !sec.HasKey(name) {
		return "", fmt.Errorf("missing key %q", name)
	}
	v := sec.Key(name).String()
	if v == "" {
		return "", fmt.Errorf("key %q is empty", name)
	}
	return v, nil
}

func requiredInt(sec *ini.Section, name string) (int, error) {
	if !sec.HasKey(name) {
		return 0, fmt.Errorf("missing key %q", name)
	}
	v, err := sec.Key(name).Int()
	if err != nil {
		return 0, fmt.Errorf("key %q: %q is not an integer", name, sec.Key(name).String())
	}
	return v, nil
}

// requiredCount is requiredInt restricted to non-negative values.
func requiredCount(sec *ini.Section, name string) (int, error) {
	v, err := requiredInt(sec, name)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("key %q: %d must not be negative", name, v)
	}
	return v, nil
}

func requiredFloat(sec *ini.Section, name string) (float32, error) {
	if !sec.HasKey(name) {
		return 0, fmt.Errorf("missing key %q", name)
	}
	v, err := sec.Key(name).Float64()
	if err != nil {
		return 0, fmt.Errorf("key %q: %q is not a number", name, sec.Key(name).String())
	}
	return float32(v), nil
}
