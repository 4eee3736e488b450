package control

import "testing"

// feed runs a sequence of readings through the controller and returns the
// outputs, one per reading.
func feed(c *Controller, temps ...float32) []Output {
	outs := make([]Output, 0, len(temps))
	for _, temp := range temps {
		outs = append(outs, c.Update(temp))
	}
	return outs
}

func wantOutput(t *testing.T, step int, got, want Output) {
	t.Helper()
	if got.Action != want.Action {
		t.Fatalf("step %d: action = %s, want %s", step, got.Action, want.Action)
	}
	if want.Action == ActionChange && !almostEqual(got.Duty, want.Duty) {
		t.Fatalf("step %d: duty = %f, want %f", step, got.Duty, want.Duty)
	}
}

func TestControllerStaysOffAtOrBelowStart(t *testing.T) {
	c := NewController(mustCurve(t), 2)
	for i, out := range feed(c, -40, 20, 35, 40, 39) {
		if out.Action != ActionOff {
			t.Errorf("step %d: action = %s, want %s", i, out.Action, ActionOff)
		}
	}
	if c.Phase() != PhaseOff {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseOff)
	}
	if c.Duty() != 0 {
		t.Errorf("duty = %f, want 0", c.Duty())
	}
}

func TestControllerStartsWhenAboveStart(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 2)
	out := c.Update(45)
	wantOutput(t, 0, out, Output{Action: ActionChange, Duty: curve.Map(45)})
	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseRunning)
	}
	if !almostEqual(c.Duty(), curve.Map(45)) {
		t.Errorf("duty = %f, want %f", c.Duty(), curve.Map(45))
	}
}

func TestControllerTracksRisingTemperature(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 2)
	temps := []float32{41, 45, 52, 60, 75, 90}
	for i, temp := range temps {
		wantOutput(t, i, c.Update(temp), Output{Action: ActionChange, Duty: curve.Map(temp)})
	}
	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseRunning)
	}
}

func TestControllerHoldsThroughLag(t *testing.T) {
	c := NewController(mustCurve(t), 2)
	c.Update(50)
	held := c.Duty()
	// Entry tick plus two countdown ticks: three holds for lag 2.
	for i, out := range feed(c, 48, 47, 46) {
		if out.Action != ActionKeep {
			t.Fatalf("step %d: action = %s, want %s", i, out.Action, ActionKeep)
		}
		if !almostEqual(c.Duty(), held) {
			t.Fatalf("step %d: held duty drifted from %f to %f", i, held, c.Duty())
		}
	}
	if c.Phase() != PhaseCooling {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseCooling)
	}
}

func TestControllerFlatReadingStartsCooling(t *testing.T) {
	c := NewController(mustCurve(t), 2)
	c.Update(50)
	out := c.Update(50)
	if out.Action != ActionKeep {
		t.Errorf("action = %s, want %s", out.Action, ActionKeep)
	}
	if c.Phase() != PhaseCooling {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseCooling)
	}
}

func TestControllerStopsOnlyAfterLagAndBelowStop(t *testing.T) {
	c := NewController(mustCurve(t), 2)
	// Drop straight to cold: the countdown still has to elapse first.
	c.Update(50)
	for i, out := range feed(c, 20, 20, 20) {
		if out.Action != ActionKeep {
			t.Fatalf("step %d: action = %s, want %s", i, out.Action, ActionKeep)
		}
	}
	out := c.Update(20)
	if out.Action != ActionOff {
		t.Errorf("action = %s, want %s", out.Action, ActionOff)
	}
	if c.Phase() != PhaseOff {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseOff)
	}
}

func TestControllerReanchorsWhileWarm(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 2)
	feed(c, 50, 48, 47, 46)
	// Countdown elapsed, still above stop: settle halfway between the
	// reading and the old anchor (50), then restart the countdown.
	out := c.Update(44)
	wantOutput(t, 0, out, Output{Action: ActionChange, Duty: curve.Map(47)})
	if c.Phase() != PhaseCooling {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseCooling)
	}
	for i, next := range feed(c, 43, 42) {
		if next.Action != ActionKeep {
			t.Fatalf("step %d after re-anchor: action = %s, want %s", i, next.Action, ActionKeep)
		}
	}
	// Second re-anchor halves toward the new reading from 47.
	out = c.Update(41)
	wantOutput(t, 0, out, Output{Action: ActionChange, Duty: curve.Map(44)})
}

func TestControllerRisingInterruptsCooling(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 4)
	feed(c, 50, 49)
	out := c.Update(53)
	wantOutput(t, 0, out, Output{Action: ActionChange, Duty: curve.Map(53)})
	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseRunning)
	}
}

func TestControllerDutyNeverDropsDuringHold(t *testing.T) {
	c := NewController(mustCurve(t), 5)
	c.Update(60)
	floor := c.Duty()
	// A slow sensor drift downward must not translate into speed changes
	// while the countdown runs.
	for i, temp := range []float32{59.9, 59.8, 59.7, 59.6, 59.5, 59.4} {
		out := c.Update(temp)
		if out.Action != ActionKeep {
			t.Fatalf("step %d: action = %s, want %s", i, out.Action, ActionKeep)
		}
		if c.Duty() < floor {
			t.Fatalf("step %d: duty %f dropped below %f", i, c.Duty(), floor)
		}
	}
}

func TestControllerScenario(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 2)
	steps := []struct {
		temp float32
		want Output
	}{
		{35, Output{Action: ActionOff}},
		{45, Output{Action: ActionChange, Duty: curve.Map(45)}},
		{50, Output{Action: ActionChange, Duty: curve.Map(50)}},
		{48, Output{Action: ActionKeep}},
		{47, Output{Action: ActionKeep}},
		{46, Output{Action: ActionKeep}},
		{20, Output{Action: ActionOff}},
	}
	for i, step := range steps {
		wantOutput(t, i, c.Update(step.temp), step.want)
	}
}

func TestForceStartsCoolingHold(t *testing.T) {
	curve := mustCurve(t)
	c := NewController(curve, 2)
	out := c.Force(35, 0.9)
	wantOutput(t, 0, out, Output{Action: ActionChange, Duty: 0.9})
	if c.Phase() != PhaseCooling {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseCooling)
	}
	if !almostEqual(c.Duty(), 0.9) {
		t.Errorf("duty = %f, want 0.9", c.Duty())
	}
	// A flat reading continues the hold; a rising one resumes tracking.
	if next := c.Update(35); next.Action != ActionKeep {
		t.Errorf("flat after force: action = %s, want %s", next.Action, ActionKeep)
	}
	next := c.Update(36)
	wantOutput(t, 0, next, Output{Action: ActionChange, Duty: curve.Map(36)})
	if c.Phase() != PhaseRunning {
		t.Errorf("phase = %s, want %s", c.Phase(), PhaseRunning)
	}
}

func TestControllerDeterministic(t *testing.T) {
	temps := []float32{35, 45, 50, 48, 47, 46, 44, 43, 42, 41, 30, 30, 30, 20, 55, 60, 58}
	a := NewController(mustCurve(t), 3)
	b := NewController(mustCurve(t), 3)
	for i, temp := range temps {
		ga, gb := a.Update(temp), b.Update(temp)
		if ga != gb {
			t.Fatalf("step %d: outputs diverged: %+v vs %+v", i, ga, gb)
		}
	}
}
