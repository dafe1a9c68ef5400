package lifting

// FrameValues holds one value per frame for frames 1..Len(). RWL and LI are
// both stored this way and always share the same frame range.
type FrameValues struct {
	values []float64
}

// NewFrameValues wraps vs so that vs[0] is frame 1.
func NewFrameValues(vs []float64) FrameValues {
	return FrameValues{values: vs}
}

// Get returns the value for a 1-based frame. ok is false outside 1..Len().
func (f FrameValues) Get(frame int) (v float64, ok bool) {
	if frame < 1 || frame > len(f.values) {
		return 0, false
	}
	return f.values[frame-1], true
}

// Len returns the number of frames held.
func (f FrameValues) Len() int {
	return len(f.values)
}

// Values returns a copy of the values in frame order.
func (f FrameValues) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}

// Map returns the values keyed by frame number.
func (f FrameValues) Map() map[int]float64 {
	out := make(map[int]float64, len(f.values))
	for i, v := range f.values {
		out[i+1] = v
	}
	return out
}
