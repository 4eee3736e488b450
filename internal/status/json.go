package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Fan           FanJSON    `json:"fan"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// FanJSON reports the fan and controller state.
type FanJSON struct {
	Phase        string  `json:"phase"`
	On           bool    `json:"on"`
	TemperatureC float32 `json:"temperature_c"`
	DutyCyclePct float32 `json:"duty_cycle_pct"`
	RPM          int     `json:"rpm,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Started      int `json:"fan_started"`
	Stopped      int `json:"fan_stopped"`
	Changed      int `json:"duty_changed"`
	MaxSpeed     int `json:"max_speed"`
	SensorErrors int `json:"sensor_errors"`
	PWMErrors    int `json:"pwm_errors"`
	Ticks        int `json:"ticks"`
}

// CurveJSON is the JSON representation of the duty curve.
type CurveJSON struct {
	StopTemperature  float32 `json:"stop_temperature"`
	StartTemperature float32 `json:"start_temperature"`
	HighTemperature  float32 `json:"high_temperature"`
	MinDutyCycle     float32 `json:"min_duty_cycle"`
	MaxDutyCycle     float32 `json:"max_duty_cycle"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs     int64     `json:"interval_ms"`
	LagCycles      int       `json:"lag_cycles"`
	MaxSpeedCycles int       `json:"max_speed_cycles"`
	HeartbeatMs    int64     `json:"heartbeat_ms,omitempty"`
	Broker         string    `json:"broker"`
	HTTPAddr       string    `json:"http_addr"`
	ThermalZone    string    `json:"thermal_zone"`
	PWMChip        string    `json:"pwm_chip"`
	PWMFrequency   uint32    `json:"pwm_frequency"`
	TachChip       string    `json:"tach_chip,omitempty"`
	TachLine       int       `json:"tach_line,omitempty"`
	Curve          CurveJSON `json:"curve"`
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	return StatusInner{
		Fan: FanJSON{
			Phase:        phase,
			On:           snap.FanOn,
			TemperatureC: snap.Temperature,
			DutyCyclePct: snap.DutyCycle * 100,
			RPM:          snap.RPM,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Started:      snap.Counts.Started,
			Stopped:      snap.Counts.Stopped,
			Changed:      snap.Counts.Changed,
			MaxSpeed:     snap.Counts.MaxSpeed,
			SensorErrors: snap.Counts.SensorErrors,
			PWMErrors:    snap.Counts.PWMErrors,
			Ticks:        snap.Counts.Ticks,
		},
		Config: ConfigJSON{
			IntervalMs:     snap.Config.IntervalMs,
			LagCycles:      snap.Config.LagCycles,
			MaxSpeedCycles: snap.Config.MaxSpeedCycles,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			ThermalZone:    snap.Config.ThermalZone,
			PWMChip:        snap.Config.PWMChip,
			PWMFrequency:   snap.Config.PWMFrequency,
			TachChip:       snap.Config.TachChip,
			TachLine:       snap.Config.TachLine,
			Curve: CurveJSON{
				StopTemperature:  snap.Config.Curve.StopTemperature,
				StartTemperature: snap.Config.Curve.StartTemperature,
				HighTemperature:  snap.Config.Curve.HighTemperature,
				MinDutyCycle:     snap.Config.Curve.MinDutyCycle,
				MaxDutyCycle:     snap.Config.Curve.MaxDutyCycle,
			},
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
