package pwm

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Device is one exported channel of a sysfs PWM chip, for example
// /sys/class/pwm/pwmchip0/pwm0.
type Device struct {
	dir string
}

// NewDevice opens the given channel of a pwmchip directory, exporting it
// first when the channel directory is absent, and verifies that the four
// attribute files are in place.
func NewDevice(chip string, instance uint) (*Device, error) {
	dir := filepath.Join(chip, fmt.Sprintf("pwm%d", instance))
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		num := strconv.FormatUint(uint64(instance), 10)
		if err := os.WriteFile(filepath.Join(chip, "export"), []byte(num), 0o644); err != nil {
			return nil, fmt.Errorf("export pwm%d: %w", instance, err)
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("pwm%d missing after export: %w", instance, err)
		}
	}
	for _, attr := range []string{"period", "duty_cycle", "polarity", "enable"} {
		if _, err := os.Stat(filepath.Join(dir, attr)); err != nil {
			return nil, fmt.Errorf("pwm attribute %s: %w", attr, err)
		}
	}
	return &Device{dir: dir}, nil
}

// SetPeriod sets the period register.
func (d *Device) SetPeriod(v uint32) error {
	return d.writeAttr("period", strconv.FormatUint(uint64(v), 10))
}

// SetDutyCycle sets the active-time register.
func (d *Device) SetDutyCycle(v uint32) error {
	return d.writeAttr("duty_cycle", strconv.FormatUint(uint64(v), 10))
}

// SetPolarity selects the active level.
func (d *Device) SetPolarity(p Polarity) error {
	return d.writeAttr("polarity", string(p))
}

// SetEnabled starts or stops the output.
func (d *Device) SetEnabled(on bool) error {
	if on {
		return d.writeAttr("enable", "1")
	}
	return d.writeAttr("enable", "0")
}

// Close leaves the channel exported so a restarted daemon finds the fan in
// the state it was left in.
func (d *Device) Close() error { return nil }

func (d *Device) writeAttr(name, value string) error {
	if err := os.WriteFile(filepath.Join(d.dir, name), []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
