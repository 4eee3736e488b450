package control

import (
	"strings"
	"testing"
)

func mustCurve(t *testing.T) Curve {
	t.Helper()
	c, err := NewCurve(30, 40, 70, 0.5, 0.9)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return c
}

func almostEqual(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

func TestNewCurveAcceptsValidParameters(t *testing.T) {
	c, err := NewCurve(30, 40, 70, 0.5, 0.9)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	if c.StopTemperature() != 30 || c.StartTemperature() != 40 || c.HighTemperature() != 70 {
		t.Errorf("temperatures not retained: %v", c)
	}
	if c.MinDutyCycle() != 0.5 || c.MaxDutyCycle() != 0.9 {
		t.Errorf("duty bounds not retained: %v", c)
	}
}

func TestNewCurveRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name               string
		t0, t1, t2, pl, ph float32
		wantField          string
	}{
		{"start equals stop", 40, 40, 70, 0.5, 0.9, "start_temperature"},
		{"start below stop", 45, 40, 70, 0.5, 0.9, "start_temperature"},
		{"high equals start", 30, 40, 40, 0.5, 0.9, "high_temperature"},
		{"high below start", 30, 40, 35, 0.5, 0.9, "high_temperature"},
		{"min duty zero", 30, 40, 70, 0, 0.9, "min_duty_cycle"},
		{"min duty one", 30, 40, 70, 1, 0.9, "min_duty_cycle"},
		{"min duty negative", 30, 40, 70, -0.2, 0.9, "min_duty_cycle"},
		{"max duty zero", 30, 40, 70, 0.5, 0, "max_duty_cycle"},
		{"max duty above one", 30, 40, 70, 0.5, 1.5, "max_duty_cycle"},
		{"max not above min", 30, 40, 70, 0.5, 0.5, "max_duty_cycle"},
		{"max below min", 30, 40, 70, 0.9, 0.5, "max_duty_cycle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve(tt.t0, tt.t1, tt.t2, tt.pl, tt.ph)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name %s", err, tt.wantField)
			}
		})
	}
}

func TestNewCurveReportsFirstViolation(t *testing.T) {
	// Several rules broken at once: the temperature ordering is checked
	// before the duty bounds, so the error names start_temperature.
	_, err := NewCurve(50, 40, 30, 0, 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "start_temperature") {
		t.Errorf("error %q does not name start_temperature", err)
	}
}

func TestMap(t *testing.T) {
	c := mustCurve(t)
	tests := []struct {
		name string
		temp float32
		want float32
	}{
		{"well below ramp", 20, 0.5},
		{"at ramp floor", 40, 0.5},
		{"one third up", 50, 0.6333333},
		{"midpoint", 55, 0.7},
		{"at ramp ceiling", 70, 0.9},
		{"well above ramp", 100, 0.9},
		{"below stop still min", 10, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Map(tt.temp); !almostEqual(got, tt.want) {
				t.Errorf("Map(%.1f) = %f, want %f", tt.temp, got, tt.want)
			}
		})
	}
}

func TestMapIsMonotonic(t *testing.T) {
	c := mustCurve(t)
	prev := c.Map(-50)
	for temp := float32(-49); temp <= 120; temp++ {
		got := c.Map(temp)
		if got < prev {
			t.Fatalf("Map(%.1f) = %f decreased from %f", temp, got, prev)
		}
		prev = got
	}
}

func TestMapStaysWithinDutyBounds(t *testing.T) {
	c := mustCurve(t)
	for temp := float32(-300); temp <= 300; temp += 7 {
		got := c.Map(temp)
		if got < c.MinDutyCycle() || got > c.MaxDutyCycle() {
			t.Fatalf("Map(%.1f) = %f outside [%f, %f]", temp, got, c.MinDutyCycle(), c.MaxDutyCycle())
		}
	}
}
