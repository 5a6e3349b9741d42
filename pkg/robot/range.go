package robot

// Range is the commandable goal position window, inclusive on both ends.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultRange is the safe travel of the reference rig.
var DefaultRange = Range{Min: 1310, Max: 2566}

// Mid returns the midpoint, rounded down.
func (r Range) Mid() int {
	return (r.Min + r.Max) / 2
}

// Clamp limits v to the range.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Normalize converts a raw position to a normalized value in the range [-100, 100].
func (r Range) Normalize(raw int) float64 {
	rangeSize := float64(r.Max - r.Min)
	if rangeSize == 0 {
		return 0
	}
	return (float64(raw-r.Min)/rangeSize)*200 - 100
}

// Denormalize converts a normalized value [-100, 100] to a raw position.
func (r Range) Denormalize(norm float64) int {
	rangeSize := float64(r.Max - r.Min)
	return int((norm+100)/200*rangeSize) + r.Min
}
