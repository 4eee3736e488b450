package sensor

import "errors"

// FakeReader is a test double that returns scripted temperatures.
type FakeReader struct {
	// Temps contains scripted readings in °C.
	// Each call to Read() consumes the next one.
	Temps []float32

	// index tracks current position in Temps
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given readings.
func NewFakeReader(temps []float32) *FakeReader {
	return &FakeReader{Temps: temps}
}

// Read returns the next scripted temperature.
// If readings are exhausted, returns the last one repeatedly.
func (f *FakeReader) Read() (float32, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Temps) == 0 {
		return 0, errors.New("no temperatures configured")
	}

	t := f.Temps[f.index]
	if f.index < len(f.Temps)-1 {
		f.index++
	}

	return t, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of the script.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
