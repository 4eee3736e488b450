package pwm

// FakeActuator is a test double that records every register write.
type FakeActuator struct {
	// Periods, Duties, Polarities and Enables record the values written,
	// in call order.
	Periods    []uint32
	Duties     []uint32
	Polarities []Polarity
	Enables    []bool

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by every Set call
	WriteError error
}

// NewFakeActuator creates an empty recording actuator.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetPeriod records the period value.
func (f *FakeActuator) SetPeriod(v uint32) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Periods = append(f.Periods, v)
	return nil
}

// SetDutyCycle records the duty value.
func (f *FakeActuator) SetDutyCycle(v uint32) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Duties = append(f.Duties, v)
	return nil
}

// SetPolarity records the polarity.
func (f *FakeActuator) SetPolarity(p Polarity) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Polarities = append(f.Polarities, p)
	return nil
}

// SetEnabled records the enable state.
func (f *FakeActuator) SetEnabled(on bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Enables = append(f.Enables, on)
	return nil
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}

// LastDuty returns the most recent duty write, or false if none happened.
func (f *FakeActuator) LastDuty() (uint32, bool) {
	if len(f.Duties) == 0 {
		return 0, false
	}
	return f.Duties[len(f.Duties)-1], true
}

// LastEnable returns the most recent enable write, or false if none happened.
func (f *FakeActuator) LastEnable() (bool, bool) {
	if len(f.Enables) == 0 {
		return false, false
	}
	return f.Enables[len(f.Enables)-1], true
}
