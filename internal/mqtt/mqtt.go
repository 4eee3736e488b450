// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for fan events.
const Topic = "fanctrl/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fanctrl/system"

// EventType identifies a fan event.
type EventType string

const (
	// EventStarted fires on the off to on transition.
	EventStarted EventType = "FAN_STARTED"
	// EventStopped fires on the on to off transition.
	EventStopped EventType = "FAN_STOPPED"
	// EventMaxSpeed fires when a max-speed override begins.
	EventMaxSpeed EventType = "FAN_MAX_SPEED"
)

// Event represents a fan state transition. Duty changes while running are
// log-only and never published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature float32 // °C at the time of the transition
	DutyCycle   float32 // fraction of the PWM period, 0 when stopped
	RPM         int     // 0 when no tachometer is fitted
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a fan event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Fan FanPayload `json:"fan"`
}

// FanPayload contains the fan event details.
type FanPayload struct {
	Timestamp    string  `json:"timestamp"`
	Event        string  `json:"event"`
	TemperatureC float32 `json:"temperature_c"`
	DutyCyclePct float32 `json:"duty_cycle_pct"`
	RPM          int     `json:"rpm,omitempty"`
}

// FormatPayload creates the JSON payload for a fan event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Fan: FanPayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			TemperatureC: event.Temperature,
			DutyCyclePct: event.DutyCycle * 100,
			RPM:          event.RPM,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
