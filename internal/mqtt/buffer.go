package mqtt

import "log"

// bufferedMsg is a serialized publish held for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO for messages queued while the broker
// is unreachable. On overflow the oldest message is dropped.
// Not safe for concurrent use; RealPublisher holds the lock.
type ringBuffer struct {
	buf     []bufferedMsg
	read    int // position of the oldest queued message
	count   int
	dropped int // messages lost to overflow since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == len(r.buf) {
		if r.dropped == 0 {
			log.Printf("mqtt: queue full (%d messages), dropping oldest", len(r.buf))
		}
		r.dropped++
		// Overwrite the oldest message and move the read position past it.
		r.buf[r.read] = msg
		r.read = (r.read + 1) % len(r.buf)
		return
	}
	r.buf[(r.read+r.count)%len(r.buf)] = msg
	r.count++
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}
	out := make([]bufferedMsg, r.count)
	for i := range out {
		out[i] = r.buf[(r.read+i)%len(r.buf)]
	}
	r.read = 0
	r.count = 0
	r.dropped = 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
