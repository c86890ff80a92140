package gridastar

import "math"

// Heuristic returns the estimated cost from one location to another.
type Heuristic func(from Location, to Location) float64

// Manhattan is the 4-connected grid distance.
func Manhattan(from, to Location) float64 {
	return float64(absInt(from.X-to.X) + absInt(from.Y-to.Y))
}

// Euclidean is the straight-line distance.
func Euclidean(from, to Location) float64 {
	return math.Hypot(float64(from.X-to.X), float64(from.Y-to.Y))
}

// Octile is the 8-connected grid distance with diagonal steps costing sqrt(2).
func Octile(from, to Location) float64 {
	dx := float64(absInt(from.X - to.X))
	dy := float64(absInt(from.Y - to.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

func absInt(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
