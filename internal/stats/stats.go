// Package stats keeps a rolling window of CPU samples and derives the moving
// average and short-term trend shown on the dashboard.
package stats

// DefaultCapacity is the number of samples retained when no capacity is given.
const DefaultCapacity = 60

// TrendMinSamples is the sample count the window must exceed before Trend reports a value.
const TrendMinSamples = 10

// trendRecent is how many of the newest samples are averaged for the trend.
const trendRecent = 5

// Engine owns a fixed-capacity FIFO window of CPU utilization samples.
// It is not safe for concurrent use; the monitor loop is its only writer.
type Engine struct {
	window *ringBuffer
}

// New creates an engine with the given window capacity.
func New(capacity int) *Engine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Engine{window: newRingBuffer(capacity)}
}

// Update appends a sample, evicting the oldest one when the window is full.
// Any float is accepted; NaN propagates into Average and Trend.
func (e *Engine) Update(sample float64) {
	e.window.push(sample)
}

// Average returns the arithmetic mean of the window.
// The second result is false only when the window is empty.
func (e *Engine) Average() (float64, bool) {
	if e.window.count == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range e.window.getAll() {
		sum += v
	}
	return sum / float64(e.window.count), true
}

// Trend returns the mean of the 5 newest samples minus the oldest sample in
// the window. It is a short-term-vs-baseline delta, not a regression slope;
// positive values mean rising load. The second result is false until the
// window holds more than 10 samples.
func (e *Engine) Trend() (float64, bool) {
	if e.window.count <= TrendMinSamples {
		return 0, false
	}
	var sum float64
	for _, v := range e.window.getLast(trendRecent) {
		sum += v
	}
	oldest := e.window.getAll()[0]
	return sum/trendRecent - oldest, true
}

// Len returns the number of samples in the window.
func (e *Engine) Len() int {
	return e.window.count
}

// Capacity returns the maximum number of samples the window holds.
func (e *Engine) Capacity() int {
	return e.window.size
}

// Samples returns a copy of the window, oldest first.
func (e *Engine) Samples() []float64 {
	return e.window.getAll()
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, overwriting the oldest once full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the newest value is at head-1
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}

// getAll returns all stored values in chronological order.
func (r *ringBuffer) getAll() []float64 {
	return r.getLast(r.count)
}
