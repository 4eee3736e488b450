package sensor

import (
	"fmt"
	"os"
	"path/filepath"
)

// Device reads temperatures from a sysfs thermal zone directory such as
// /sys/class/thermal/thermal_zone0. The zone's temp attribute carries
// millidegrees Celsius as ASCII digits; an optional offset attribute (also
// millidegrees) is subtracted before scaling.
type Device struct {
	tempPath string
	offset   int64
}

// NewDevice verifies that dir contains a readable temp attribute and
// captures the zone's offset if one is published. The offset is read once;
// thermal zone offsets are fixed per zone.
func NewDevice(dir string) (*Device, error) {
	d := &Device{tempPath: filepath.Join(dir, "temp")}
	if _, err := readMillidegrees(d.tempPath); err != nil {
		return nil, fmt.Errorf("thermal zone %s: %w", dir, err)
	}
	if off, err := readMillidegrees(filepath.Join(dir, "offset")); err == nil {
		d.offset = off
	}
	return d, nil
}

// Read returns the current temperature in degrees Celsius.
func (d *Device) Read() (float32, error) {
	raw, err := readMillidegrees(d.tempPath)
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	return float32(raw-d.offset) / 1000, nil
}

// Close releases nothing: sysfs attributes are opened per read. It exists so
// Device satisfies Reader alongside implementations that hold descriptors.
func (d *Device) Close() error { return nil }

// readMillidegrees parses the leading decimal run of a sysfs attribute.
// Kernel attributes are newline terminated, so only the leading digits
// (with an optional sign) count; anything after them is ignored.
func readMillidegrees(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	i := 0
	neg := false
	if i < len(data) && (data[i] == '-' || data[i] == '+') {
		neg = data[i] == '-'
		i++
	}
	start := i
	var v int64
	for ; i < len(data) && data[i] >= '0' && data[i] <= '9'; i++ {
		v = v*10 + int64(data[i]-'0')
	}
	if i == start {
		return 0, fmt.Errorf("%s: no leading digits in %q", path, data)
	}
	if neg {
		v = -v
	}
	return v, nil
}
