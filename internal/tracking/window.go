package tracking

// sampleWindow is a fixed-capacity ring of recent samples, oldest evicted
// first. It bounds per-trip memory while keeping enough history for
// average-speed and stall detection.
type sampleWindow struct {
	buf  []TelemetrySample
	head int // index of the oldest element
	size int
}

func newSampleWindow(capacity int) sampleWindow {
	if capacity < 1 {
		capacity = 1
	}
	return sampleWindow{buf: make([]TelemetrySample, capacity)}
}

func (w *sampleWindow) push(s TelemetrySample) {
	if w.size < len(w.buf) {
		w.buf[(w.head+w.size)%len(w.buf)] = s
		w.size++
		return
	}
	// Full: overwrite the oldest slot.
	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
}

func (w *sampleWindow) len() int {
	return w.size
}

// at returns the i-th sample, oldest first. Panics on out-of-range like a
// slice would.
func (w *sampleWindow) at(i int) TelemetrySample {
	if i < 0 || i >= w.size {
		panic("tracking: sample window index out of range")
	}
	return w.buf[(w.head+i)%len(w.buf)]
}

func (w *sampleWindow) latest() (TelemetrySample, bool) {
	if w.size == 0 {
		return TelemetrySample{}, false
	}
	return w.at(w.size - 1), true
}

// insert places s at its timestamp-ordered position, evicting the oldest
// sample when the window is full. Samples arriving in order take the
// append path; only a reordered sample pays the shift.
func (w *sampleWindow) insert(s TelemetrySample) {
	if last, ok := w.latest(); !ok || !s.CapturedAt.Before(last.CapturedAt) {
		w.push(s)
		return
	}
	if w.size == len(w.buf) {
		w.head = (w.head + 1) % len(w.buf)
		w.size--
	}
	i := w.size
	for i > 0 && s.CapturedAt.Before(w.at(i-1).CapturedAt) {
		w.buf[(w.head+i)%len(w.buf)] = w.at(i - 1)
		i--
	}
	w.buf[(w.head+i)%len(w.buf)] = s
	w.size++
}

// clone deep-copies the window so a TrackedTrip value can be advanced
// without aliasing the previous state's buffer.
func (w sampleWindow) clone() sampleWindow {
	buf := make([]TelemetrySample, len(w.buf))
	copy(buf, w.buf)
	return sampleWindow{buf: buf, head: w.head, size: w.size}
}
