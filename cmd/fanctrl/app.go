package main

import (
	"fmt"
	"log"
	"syscall"
	"time"

	"github.com/DWCarrot/fanctrl-rock5b/internal/config"
	"github.com/DWCarrot/fanctrl-rock5b/internal/control"
	"github.com/DWCarrot/fanctrl-rock5b/internal/metrics"
	"github.com/DWCarrot/fanctrl-rock5b/internal/mqtt"
	"github.com/DWCarrot/fanctrl-rock5b/internal/pwm"
	"github.com/DWCarrot/fanctrl-rock5b/internal/sensor"
	"github.com/DWCarrot/fanctrl-rock5b/internal/status"
	"github.com/DWCarrot/fanctrl-rock5b/internal/tacho"
)

// App holds the wired daemon: the controller plus every device and sink a
// control tick touches. Methods are called from the run loop only, so no
// locking is needed; the status tracker does its own.
type App struct {
	cfg        *config.Config
	controller *control.Controller
	sensor     sensor.Reader
	fan        pwm.Actuator
	tach       tacho.Counter // nil when no tachometer is fitted
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // nil when the publisher cannot report
	tracker    *status.Tracker
	heartbeat  time.Duration // 0 disables heartbeats
	debug      bool
	now        func() time.Time

	counts            status.EventCounts
	fanOn             bool
	temperature       float32 // last good reading, °C
	appliedDuty       float32
	rpm               int
	maxSpeedRemaining int
	lastHeartbeat     time.Time
}

// Launch configures the PWM channel and spins the fan up at the minimum
// duty cycle. Any failure here is fatal: a daemon that cannot drive the fan
// at startup should not run at all.
func (a *App) Launch() error {
	if err := a.fan.SetPeriod(a.cfg.PWMFrequency); err != nil {
		return fmt.Errorf("set period: %w", err)
	}
	if err := a.fan.SetPolarity(pwm.Normal); err != nil {
		return fmt.Errorf("set polarity: %w", err)
	}
	log.Printf("fan initialized: frequency=%dHz, polarity=%s", a.cfg.PWMFrequency, pwm.Normal)

	temperature, err := a.sensor.Read()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}
	a.temperature = temperature

	out := a.controller.Force(temperature, a.controller.Curve().MinDutyCycle())
	if _, err := a.startFan(out.Duty); err != nil {
		return fmt.Errorf("start fan: %w", err)
	}
	a.counts.Started++
	metrics.RecordEvent(string(mqtt.EventStarted))
	log.Printf("fan launched at %.2f°C with pwm-duty-ratio=%.2f%%", temperature, out.Duty*100)
	a.publish(mqtt.EventStarted, temperature, out.Duty)

	a.lastHeartbeat = a.now()
	a.refresh()
	metrics.RecordPhase(string(a.controller.Phase()))
	return nil
}

// Tick runs one control cycle: read the sensor, feed the controller, apply
// its output. While a max-speed override is counting down the sensor is not
// read and the controller is left untouched. Sensor and PWM failures are
// logged and counted; the loop always survives them.
func (a *App) Tick() {
	a.counts.Ticks++
	if a.tach != nil {
		a.rpm = a.tach.RPM()
	}

	if a.maxSpeedRemaining > 0 {
		a.maxSpeedRemaining--
		if a.debug {
			log.Printf("max speed hold: %d cycles remaining", a.maxSpeedRemaining)
		}
	} else if temperature, err := a.sensor.Read(); err != nil {
		a.counts.SensorErrors++
		metrics.RecordError("sensor")
		log.Printf("sensor read error: %v", err)
	} else {
		a.temperature = temperature
		out := a.controller.Update(temperature)
		if a.debug {
			log.Printf("control status: temperature=%.2f°C, action=%s, duty=%.2f", temperature, out.Action, out.Duty)
		}
		a.apply(out, temperature)
	}

	a.refresh()
	metrics.RecordTick(float64(a.temperature), float64(a.appliedDuty), a.fanOn, a.rpm)
	metrics.RecordPhase(string(a.controller.Phase()))
	a.maybeHeartbeat()
}

// MaxSpeed jumps the fan to the maximum duty cycle and holds it there for
// the configured number of cycles. The controller is bypassed, not reset:
// when the hold expires the next tick resumes from its previous state.
func (a *App) MaxSpeed() {
	duty := a.controller.Curve().MaxDutyCycle()
	if _, err := a.startFan(duty); err != nil {
		a.counts.PWMErrors++
		metrics.RecordError("pwm")
		log.Printf("max speed error: %v", err)
		return
	}
	a.maxSpeedRemaining = a.cfg.MaxSpeedTimeCycle
	a.counts.MaxSpeed++
	metrics.RecordEvent(string(mqtt.EventMaxSpeed))
	log.Printf("fan set to maximum speed for %d cycles with pwm-duty-ratio=%.2f%%", a.cfg.MaxSpeedTimeCycle, duty*100)
	a.publish(mqtt.EventMaxSpeed, a.temperature, duty)
	a.refresh()
}

// Shutdown disables the fan and publishes a retained SHUTDOWN event
// carrying the final status snapshot.
func (a *App) Shutdown(reason string) {
	stopped, err := a.stopFan()
	if err != nil {
		log.Printf("failed to stop fan: %v", err)
	} else if stopped {
		log.Printf("fan terminated")
	}
	a.refresh()

	snap := a.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  a.now(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := a.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func (a *App) apply(out control.Output, temperature float32) {
	switch out.Action {
	case control.ActionOff:
		stopped, err := a.stopFan()
		if err != nil {
			a.counts.PWMErrors++
			metrics.RecordError("pwm")
			log.Printf("pwm disable error: %v", err)
			return
		}
		if stopped {
			a.counts.Stopped++
			metrics.RecordEvent(string(mqtt.EventStopped))
			log.Printf("fan stopped at %.2f°C", temperature)
			a.publish(mqtt.EventStopped, temperature, 0)
		}

	case control.ActionChange:
		started, err := a.startFan(out.Duty)
		if err != nil {
			a.counts.PWMErrors++
			metrics.RecordError("pwm")
			log.Printf("pwm duty error: %v", err)
			return
		}
		if started {
			a.counts.Started++
			metrics.RecordEvent(string(mqtt.EventStarted))
			log.Printf("fan started at %.2f°C with pwm-duty-ratio=%.2f%%", temperature, out.Duty*100)
			a.publish(mqtt.EventStarted, temperature, out.Duty)
		} else {
			// Duty changes while running are log-only, never published.
			a.counts.Changed++
			if a.debug {
				log.Printf("fan changed at %.2f°C with pwm-duty-ratio=%.2f%%", temperature, out.Duty*100)
			}
		}

	case control.ActionKeep:
		// Nothing to apply.
	}
}

// startFan writes the duty register and, if the output was disabled,
// enables it. Reports whether an off-to-on transition happened. The duty
// register holds uint32(duty * pwm_frequency), truncated toward zero.
func (a *App) startFan(duty float32) (bool, error) {
	if err := a.fan.SetDutyCycle(uint32(duty * float32(a.cfg.PWMFrequency))); err != nil {
		return false, err
	}
	started := false
	if !a.fanOn {
		if err := a.fan.SetEnabled(true); err != nil {
			return false, err
		}
		a.fanOn = true
		started = true
	}
	a.appliedDuty = duty
	return started, nil
}

// stopFan disables the output if it is enabled. Reports whether an
// on-to-off transition happened.
func (a *App) stopFan() (bool, error) {
	if !a.fanOn {
		return false, nil
	}
	if err := a.fan.SetEnabled(false); err != nil {
		return false, err
	}
	a.fanOn = false
	a.appliedDuty = 0
	return true, nil
}

func (a *App) publish(typ mqtt.EventType, temperature, duty float32) {
	event := mqtt.Event{
		Timestamp:   a.now(),
		Type:        typ,
		Temperature: temperature,
		DutyCycle:   duty,
		RPM:         a.rpm,
	}
	if err := a.publisher.Publish(event); err != nil {
		metrics.RecordError("mqtt")
		log.Printf("publish error: %v", err)
	}
}

func (a *App) refresh() {
	a.tracker.Update(a.controller.Phase(), a.temperature, a.appliedDuty, a.fanOn, a.rpm, a.counts)
	if a.mqttStatus != nil {
		a.tracker.SetMQTTConnected(a.mqttStatus.IsConnected())
	}
}

func (a *App) maybeHeartbeat() {
	if a.heartbeat <= 0 {
		return
	}
	now := a.now()
	if now.Sub(a.lastHeartbeat) < a.heartbeat {
		return
	}
	a.lastHeartbeat = now

	snap := a.tracker.Snapshot()
	log.Printf("heartbeat: uptime=%v ticks=%d started=%d stopped=%d", snap.Uptime().Round(time.Second), a.counts.Ticks, a.counts.Started, a.counts.Stopped)
	event := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := a.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

// waiter blocks until a registered signal arrives or the timeout lapses,
// returning the signal number or 0.
type waiter interface {
	Wait(timeout time.Duration) int
}

// runLoop drives the daemon off a single blocking wait: a timeout is a
// control tick, everything else is a signal dispatch. Returns when a
// termination signal arrives.
func runLoop(app *App, w waiter, interval time.Duration) error {
	for {
		n := w.Wait(interval)
		switch syscall.Signal(n) {
		case 0:
			app.Tick()
		case syscall.SIGINT, syscall.SIGTERM:
			name := signalName(n)
			log.Printf("received %s, shutting down", name)
			app.Shutdown(name)
			return nil
		case syscall.SIGUSR2:
			log.Printf("received SIGUSR2, maximum fan speed")
			app.MaxSpeed()
		case syscall.SIGUSR1:
			if app.debug {
				log.Printf("received SIGUSR1")
			}
		default:
			log.Printf("ignoring unexpected signal %s", signalName(n))
		}
	}
}

func signalName(n int) string {
	switch syscall.Signal(n) {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGUSR1:
		return "SIGUSR1"
	case syscall.SIGUSR2:
		return "SIGUSR2"
	}
	return fmt.Sprintf("signal %d", n)
}
