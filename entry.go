package gridastar

import "github.com/pdrpinto/gridastar/internal"

// Entry is one search record. State keys entries by Location, compares
// PreviousCost when relaxing and TotalCost when picking the next entry.
// An entry must not change its costs while it is held by a State.
type Entry interface {
	Location() Location
	PreviousCost() float64
	TotalCost() float64
}

// Waypoint is the Entry used by Stepper and Search. It links back to the
// waypoint it was reached from so the path can be rebuilt once the goal is found.
type Waypoint struct {
	location     Location
	previous     *Waypoint
	previousCost float64
	totalCost    float64
}

// NewWaypoint returns a waypoint at location reached from previous.
// previous is nil for the start of a search.
func NewWaypoint(location Location, previous *Waypoint) *Waypoint {
	return &Waypoint{location: location, previous: previous}
}

// SetCosts sets the cost from the start and the estimated total cost to the goal.
func (waypoint *Waypoint) SetCosts(previousCost, totalCost float64) {
	waypoint.previousCost = previousCost
	waypoint.totalCost = totalCost
}

func (waypoint *Waypoint) Location() Location     { return waypoint.location }
func (waypoint *Waypoint) Previous() *Waypoint    { return waypoint.previous }
func (waypoint *Waypoint) PreviousCost() float64  { return waypoint.previousCost }
func (waypoint *Waypoint) TotalCost() float64     { return waypoint.totalCost }
func (waypoint *Waypoint) RemainingCost() float64 { return waypoint.totalCost - waypoint.previousCost }

// Path returns the locations from the start of the search to this waypoint.
func (waypoint *Waypoint) Path() []Location {
	chain := internal.ReconstructPath(waypoint, func(current *Waypoint) (*Waypoint, bool) {
		return current.previous, current.previous != nil
	})
	path := make([]Location, len(chain))
	for i, step := range chain {
		path[i] = step.location
	}
	return path
}
