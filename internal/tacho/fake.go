package tacho

// FakeCounter is a test double that returns scripted speeds.
type FakeCounter struct {
	// RPMs contains scripted readings. Each call to RPM() consumes the
	// next one; when exhausted, the last one repeats.
	RPMs []int

	// index tracks current position in RPMs
	index int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeCounter creates a FakeCounter with the given readings.
func NewFakeCounter(rpms []int) *FakeCounter {
	return &FakeCounter{RPMs: rpms}
}

// RPM returns the next scripted reading.
func (f *FakeCounter) RPM() int {
	if len(f.RPMs) == 0 {
		return 0
	}
	v := f.RPMs[f.index]
	if f.index < len(f.RPMs)-1 {
		f.index++
	}
	return v
}

// Close marks the counter as closed.
func (f *FakeCounter) Close() error {
	f.Closed = true
	return nil
}
