package gridastar

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidArgument marks errors caused by a bad argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNilMap is returned when a state or search is created without a map.
	ErrNilMap = fmt.Errorf("%w: map cannot be nil", ErrInvalidArgument)
	// ErrNoPath is returned when the open set runs dry before reaching the goal.
	ErrNoPath = errors.New("no path found")
	// ErrExpansionLimit is returned when a search expands more locations than allowed.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

// Map is the grid a search runs over.
// Neighbors returns the locations reachable in one step from location.
type Map interface {
	Neighbors(location Location) []Neighbor
}

// Neighbor represents a reachable location with the cost of stepping onto it.
type Neighbor struct {
	Location Location
	Cost     float64
}

// Result contains the outcome of a search
type Result struct {
	Path          []Location
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	MaxExpansions   int
	Logger          log.FieldLogger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines should expand neighbors.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithMaxExpansions stops the search with ErrExpansionLimit after the given
// number of expansions. Zero or less means no limit.
func WithMaxExpansions(maxExpansions int) Option {
	return func(options *Options) { options.MaxExpansions = maxExpansions }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger log.FieldLogger) Option {
	return func(options *Options) {
		if logger != nil {
			options.Logger = logger
		}
	}
}

func defaultOptions() Options {
	return Options{
		NumberOfWorkers: runtime.NumCPU(),
		Logger:          log.StandardLogger(),
	}
}

// Search runs A* from startLocation to goalLocation and returns the cheapest path.
// It returns ErrNoPath when the goal is unreachable, ErrExpansionLimit when
// WithMaxExpansions cuts the search short, or the context error on cancellation.
func Search(
	contextObject context.Context,
	graphMap Map,
	startLocation Location,
	goalLocation Location,
	heuristic Heuristic,
	options ...Option,
) (Result, error) {
	stepper, err := NewStepper(contextObject, graphMap, startLocation, goalLocation, heuristic, options...)
	if err != nil {
		return Result{}, err
	}
	defer stepper.Close()

	for {
		done, err := stepper.advance()
		if err != nil {
			return Result{ExpandedNodes: stepper.expandedNodes}, err
		}
		if !done {
			continue
		}
		if !stepper.found {
			return Result{ExpandedNodes: stepper.expandedNodes}, ErrNoPath
		}
		return Result{
			Path:          stepper.goalWaypoint.Path(),
			TotalCost:     stepper.goalWaypoint.PreviousCost(),
			ExpandedNodes: stepper.expandedNodes,
			Found:         true,
		}, nil
	}
}
