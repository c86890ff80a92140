package gridastar

import "fmt"

// Location is a cell coordinate on a 2D grid map.
// It is a plain value: compare with == and use it directly as a map key.
type Location struct {
	X int
	Y int
}

// NewLocation returns the location (x, y). Negative coordinates are allowed;
// whether a location lies on the map is up to the Map.
func NewLocation(x, y int) Location {
	return Location{X: x, Y: y}
}

// Equal reports whether both coordinates match.
func (location Location) Equal(other Location) bool {
	return location.X == other.X && location.Y == other.Y
}

// Hash mixes the coordinates into a stable 32-bit value.
// Equal locations always hash equally.
func (location Location) Hash() int32 {
	hash := int32(7)
	hash = 31*hash + int32(location.X)
	hash = 31*hash + int32(location.Y)
	return hash
}

// Add returns the location offset by (dx, dy).
func (location Location) Add(dx, dy int) Location {
	return Location{X: location.X + dx, Y: location.Y + dy}
}

func (location Location) String() string {
	return fmt.Sprintf("(%d, %d)", location.X, location.Y)
}

// less orders locations row by row, used wherever a stable listing is needed.
func (location Location) less(other Location) bool {
	if location.Y != other.Y {
		return location.Y < other.Y
	}
	return location.X < other.X
}
