// Package status provides a thread-safe status tracker for the fanctrl
// daemon. It is read by the HTTP handlers and by the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/DWCarrot/fanctrl-rock5b/internal/control"
)

// CurveInfo contains the duty curve parameters for display. This is a local
// copy so the JSON and template layers do not reach into control internals.
type CurveInfo struct {
	StopTemperature  float32
	StartTemperature float32
	HighTemperature  float32
	MinDutyCycle     float32
	MaxDutyCycle     float32
}

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs     int64
	LagCycles      int
	MaxSpeedCycles int
	HeartbeatMs    int64
	Broker         string
	HTTPAddr       string
	ThermalZone    string
	PWMChip        string
	PWMFrequency   uint32
	TachChip       string // empty = no tachometer
	TachLine       int
	Curve          CurveInfo
}

// EventCounts tallies daemon activity since startup.
type EventCounts struct {
	Started      int // fan off to on transitions
	Stopped      int // fan on to off transitions
	Changed      int // duty changes while running
	MaxSpeed     int // max-speed overrides triggered
	SensorErrors int
	PWMErrors    int
	Ticks        int // control ticks executed
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Phase         control.Phase
	Temperature   float32 // last good reading, °C
	DutyCycle     float32 // currently applied duty fraction
	FanOn         bool
	RPM           int
	Counts        EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller phase, readings and event counts.
// Called from the control loop on every tick.
func (t *Tracker) Update(phase control.Phase, temperature, duty float32, fanOn bool, rpm int, counts EventCounts) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.snap.Temperature = temperature
	t.snap.DutyCycle = duty
	t.snap.FanOn = fanOn
	t.snap.RPM = rpm
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
