package transport

// frameRing is a fixed-capacity FIFO holding response frames while the link
// is down. Not safe for concurrent use; the owning link synchronizes.
type frameRing struct {
	buf      []string
	capacity int
	head     int // next write position
	count    int
}

func newFrameRing(capacity int) *frameRing {
	return &frameRing{
		buf:      make([]string, capacity),
		capacity: capacity,
	}
}

// push appends a frame, overwriting the oldest one when full.
func (r *frameRing) push(frame string) {
	r.buf[r.head] = frame
	r.head = (r.head + 1) % r.capacity

	if r.count < r.capacity {
		r.count++
	}
}

// drainAll returns the buffered frames oldest-first and empties the ring.
func (r *frameRing) drainAll() []string {
	if r.count == 0 {
		return nil
	}

	drained := make([]string, r.count)

	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		drained[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0

	return drained
}

func (r *frameRing) len() int {
	return r.count
}
