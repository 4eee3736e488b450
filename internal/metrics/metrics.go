// Package metrics exposes the daemon's Prometheus instrumentation. The
// collectors register themselves on the default registry; the web server
// serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Per-tick readings
	metricTemperature = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fanctrl",
			Name:      "temperature_celsius",
			Help:      "Last temperature reading from the thermal zone",
		},
	)

	metricDutyCycle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fanctrl",
			Name:      "duty_cycle_ratio",
			Help:      "Currently applied PWM duty cycle [0,1]",
		},
	)

	metricFanOn = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fanctrl",
			Name:      "fan_on",
			Help:      "Whether the fan output is enabled: 0=off, 1=on",
		},
	)

	metricRPM = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fanctrl",
			Name:      "fan_rpm",
			Help:      "Fan speed from the tachometer, 0 without one",
		},
	)

	metricPhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fanctrl",
			Name:      "controller_phase",
			Help:      "1 for the controller's current hysteresis phase, 0 for the others",
		},
		[]string{"phase"},
	)

	// Cumulative counters
	metricTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fanctrl",
			Name:      "ticks_total",
			Help:      "Control ticks executed",
		},
	)

	metricEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fanctrl",
			Name:      "events_total",
			Help:      "Fan events by type",
		},
		[]string{"event"},
	)

	metricErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fanctrl",
			Name:      "errors_total",
			Help:      "Failures by source",
		},
		[]string{"source"},
	)
)

// phases enumerates the label values metricPhase carries, so the inactive
// ones can be zeroed instead of lingering at 1.
var phases = []string{"OFF", "RUNNING", "COOLING"}

// RecordTick records the readings of one control tick.
func RecordTick(temperature, duty float64, fanOn bool, rpm int) {
	metricTicks.Inc()
	metricTemperature.Set(temperature)
	metricDutyCycle.Set(duty)
	if fanOn {
		metricFanOn.Set(1)
	} else {
		metricFanOn.Set(0)
	}
	metricRPM.Set(float64(rpm))
}

// RecordPhase marks the controller's current phase.
func RecordPhase(phase string) {
	for _, p := range phases {
		v := 0.0
		if p == phase {
			v = 1
		}
		metricPhase.WithLabelValues(p).Set(v)
	}
}

// RecordEvent counts a fan event (FAN_STARTED, FAN_STOPPED, FAN_MAX_SPEED).
func RecordEvent(event string) {
	metricEvents.WithLabelValues(event).Inc()
}

// RecordError counts a failure by source (sensor, pwm, mqtt).
func RecordError(source string) {
	metricErrors.WithLabelValues(source).Inc()
}
