// Package grid is a rectangular terrain map that search can run over.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdrpinto/gridastar"
)

// Blocked is the terrain cost of an impassable cell.
const Blocked = 0.0

// MaxCells bounds Width*Height for every grid this package builds.
const MaxCells = 1 << 20

var (
	// ErrOutOfBounds is returned when a location falls outside the grid.
	ErrOutOfBounds = errors.New("location outside grid")
	// ErrInvalidSize is returned for non-positive or oversized dimensions.
	ErrInvalidSize = errors.New("invalid grid dimensions")
	// ErrInvalidCost is returned for negative, NaN or infinite terrain costs.
	ErrInvalidCost = errors.New("terrain cost must be zero or positive")
	// ErrStartBlocked is returned by Validate when start or goal cannot be entered.
	ErrStartBlocked = errors.New("start or goal is blocked")
)

var (
	straightSteps = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalSteps = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Grid is a Width x Height map of terrain costs. A cell with cost Blocked
// cannot be entered; any other cost multiplies the length of a step onto it.
type Grid struct {
	Width, Height int
	Start, Goal   gridastar.Location
	Diagonal      bool

	costs []float64
}

// New returns a grid with every cell at cost 1, start in the top-left
// corner and goal in the bottom-right one.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxCells/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidSize, width, height, MaxCells)
	}
	costs := make([]float64, width*height)
	for i := range costs {
		costs[i] = 1
	}
	return &Grid{
		Width:  width,
		Height: height,
		Start:  gridastar.NewLocation(0, 0),
		Goal:   gridastar.NewLocation(width-1, height-1),
		costs:  costs,
	}, nil
}

// Contains reports whether location lies inside the grid.
func (g *Grid) Contains(location gridastar.Location) bool {
	return location.X >= 0 && location.X < g.Width && location.Y >= 0 && location.Y < g.Height
}

// Cost returns the terrain cost at location; outside the grid it is Blocked.
func (g *Grid) Cost(location gridastar.Location) float64 {
	if !g.Contains(location) {
		return Blocked
	}
	return g.costs[location.Y*g.Width+location.X]
}

// SetCost sets the terrain cost at location. Use Blocked to make it a wall.
func (g *Grid) SetCost(location gridastar.Location, cost float64) error {
	if !g.Contains(location) {
		return fmt.Errorf("set cost %v: %w", location, ErrOutOfBounds)
	}
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return fmt.Errorf("set cost %v to %v: %w", location, cost, ErrInvalidCost)
	}
	g.costs[location.Y*g.Width+location.X] = cost
	return nil
}

// Block turns location into a wall.
func (g *Grid) Block(location gridastar.Location) error {
	return g.SetCost(location, Blocked)
}

// IsBlocked reports whether location cannot be entered.
func (g *Grid) IsBlocked(location gridastar.Location) bool {
	return g.Cost(location) == Blocked
}

// Walls lists the blocked cells row by row.
func (g *Grid) Walls() []gridastar.Location {
	walls := make([]gridastar.Location, 0)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.costs[y*g.Width+x] == Blocked {
				walls = append(walls, gridastar.NewLocation(x, y))
			}
		}
	}
	return walls
}

// Validate checks that start and goal are open cells inside the grid.
func (g *Grid) Validate() error {
	for _, location := range []gridastar.Location{g.Start, g.Goal} {
		if !g.Contains(location) {
			return fmt.Errorf("endpoint %v: %w", location, ErrOutOfBounds)
		}
		if g.IsBlocked(location) {
			return fmt.Errorf("endpoint %v: %w", location, ErrStartBlocked)
		}
	}
	return nil
}

// Neighbors implements gridastar.Map. Straight steps have length 1 and
// diagonal ones sqrt(2); a diagonal step is only allowed when both cells it
// cuts past are open.
func (g *Grid) Neighbors(location gridastar.Location) []gridastar.Neighbor {
	neighbors := make([]gridastar.Neighbor, 0, 8)
	for _, step := range straightSteps {
		next := location.Add(step[0], step[1])
		if cost := g.Cost(next); cost != Blocked {
			neighbors = append(neighbors, gridastar.Neighbor{Location: next, Cost: cost})
		}
	}
	if !g.Diagonal {
		return neighbors
	}
	for _, step := range diagonalSteps {
		next := location.Add(step[0], step[1])
		cost := g.Cost(next)
		if cost == Blocked || g.IsBlocked(location.Add(step[0], 0)) || g.IsBlocked(location.Add(0, step[1])) {
			continue
		}
		neighbors = append(neighbors, gridastar.Neighbor{Location: next, Cost: math.Sqrt2 * cost})
	}
	return neighbors
}
