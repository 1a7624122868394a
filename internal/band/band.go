// Package band maps a measured value onto a discrete outcome through ordered
// thresholds. It replaces per-signal magic numbers for severity and
// confidence curves.
package band

// Band pairs a threshold with the outcome selected once the value reaches it.
type Band[T any] struct {
	AtLeast float64
	Value   T
}

// Pick returns the value of the first band whose threshold v reaches.
// Bands must be ordered from the highest threshold to the lowest.
// If no band matches, fallback is returned.
func Pick[T any](v float64, bands []Band[T], fallback T) T {
	for _, b := range bands {
		if v >= b.AtLeast {
			return b.Value
		}
	}
	return fallback
}

// PickBelow is Pick for values that grow more severe as they fall, such as a
// negative discount. Bands must be ordered from the lowest threshold up; the
// first band with v <= threshold wins.
func PickBelow[T any](v float64, bands []Band[T], fallback T) T {
	for _, b := range bands {
		if v <= b.AtLeast {
			return b.Value
		}
	}
	return fallback
}
