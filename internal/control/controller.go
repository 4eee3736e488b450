package control

// Action tells the caller what to do with the fan hardware after a tick.
type Action string

const (
	// ActionOff disables the fan output.
	ActionOff Action = "OFF"
	// ActionChange applies the Duty carried alongside it.
	ActionChange Action = "CHANGE"
	// ActionKeep leaves the fan exactly as it is.
	ActionKeep Action = "KEEP"
)

// Output is the decision produced by one controller tick. Duty is
// meaningful only when Action is ActionChange.
type Output struct {
	Action Action
	Duty   float32
}

// Phase names the controller's position in the hysteresis cycle.
type Phase string

const (
	// PhaseOff means the fan is stopped and stays stopped until the
	// temperature exceeds the curve's start temperature.
	PhaseOff Phase = "OFF"
	// PhaseRunning means the fan tracks the curve directly; every rising
	// reading maps straight to a new duty cycle.
	PhaseRunning Phase = "RUNNING"
	// PhaseCooling means the temperature stopped rising and the fan holds
	// its duty cycle while a lag countdown runs, so short dips do not
	// translate into speed oscillation.
	PhaseCooling Phase = "COOLING"
)

// absoluteZero is the sentinel for "no previous reading". Any physical
// temperature compares greater than it, so the first reading after startup
// always counts as rising.
const absoluteZero float32 = -273.15

// Controller is the hysteresis state machine between temperature readings
// and fan commands. Rising temperature reacts immediately; falling
// temperature is damped by a lag countdown and an averaged re-anchor; the
// fan stops only once the countdown has elapsed and the temperature sits at
// or below the curve's stop temperature.
//
// Controller is pure and deterministic: Update performs no I/O and the
// sequence of outputs is fully determined by the sequence of inputs. It is
// not safe for concurrent use; the control loop owns it.
type Controller struct {
	curve     Curve
	lagCycles int

	phase      Phase
	duty       float32 // Running: last commanded duty; Cooling: held duty
	remaining  int     // Cooling: non-rising ticks left before stop/re-anchor
	anchorTemp float32 // Cooling: temperature the held duty corresponds to

	lastTemperature float32
}

// NewController builds a controller in the Off phase with no previous
// reading. lagCycles is the number of consecutive non-rising ticks the fan
// speed is held before the controller re-evaluates.
func NewController(curve Curve, lagCycles int) *Controller {
	return &Controller{
		curve:           curve,
		lagCycles:       lagCycles,
		phase:           PhaseOff,
		lastTemperature: absoluteZero,
	}
}

// Update consumes one temperature reading and returns the action for this
// tick. Transitions are total: every combination of phase and reading maps
// to exactly one next phase and one output. The reading becomes the new
// comparison point for the next tick regardless of the branch taken.
func (c *Controller) Update(temperature float32) Output {
	var out Output
	switch c.phase {
	case PhaseOff:
		if temperature <= c.curve.startTemperature {
			out = Output{Action: ActionOff}
		} else {
			duty := c.curve.Map(temperature)
			c.phase = PhaseRunning
			c.duty = duty
			out = Output{Action: ActionChange, Duty: duty}
		}

	case PhaseRunning:
		if temperature > c.lastTemperature {
			duty := c.curve.Map(temperature)
			c.duty = duty
			out = Output{Action: ActionChange, Duty: duty}
		} else {
			// The previous reading was the peak; it anchors the hold.
			c.phase = PhaseCooling
			c.remaining = c.lagCycles
			c.anchorTemp = c.lastTemperature
			out = Output{Action: ActionKeep}
		}

	case PhaseCooling:
		switch {
		case temperature > c.lastTemperature:
			duty := c.curve.Map(temperature)
			c.phase = PhaseRunning
			c.duty = duty
			out = Output{Action: ActionChange, Duty: duty}
		case c.remaining > 0:
			c.remaining--
			out = Output{Action: ActionKeep}
		case temperature <= c.curve.stopTemperature:
			c.phase = PhaseOff
			c.duty = 0
			out = Output{Action: ActionOff}
		default:
			// Countdown elapsed but still too warm to stop: settle on the
			// midpoint between the current reading and the old anchor, and
			// restart the countdown from there.
			anchor := (temperature + c.anchorTemp) / 2
			duty := c.curve.Map(anchor)
			c.duty = duty
			c.remaining = c.lagCycles
			c.anchorTemp = anchor
			out = Output{Action: ActionChange, Duty: duty}
		}
	}
	c.lastTemperature = temperature
	return out
}

// Force bypasses the normal transitions: it records temperature as the
// current reading, moves the controller into the Cooling phase holding the
// given duty with a fresh countdown, and reports a Change so the caller
// applies that duty immediately. Used at startup to spin the fan at a known
// speed without fabricating a reading history.
func (c *Controller) Force(temperature, duty float32) Output {
	c.phase = PhaseCooling
	c.duty = duty
	c.remaining = c.lagCycles
	c.anchorTemp = temperature
	c.lastTemperature = temperature
	return Output{Action: ActionChange, Duty: duty}
}

// Curve returns the duty-cycle curve the controller was built with.
func (c *Controller) Curve() Curve { return c.curve }

// LagCycles returns the configured hold length.
func (c *Controller) LagCycles() int { return c.lagCycles }

// Phase reports which hysteresis phase the controller is in.
func (c *Controller) Phase() Phase { return c.phase }

// Duty reports the duty cycle the controller currently wants applied: the
// last commanded value in Running, the held value in Cooling, 0 in Off.
func (c *Controller) Duty() float32 { return c.duty }
