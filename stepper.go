package gridastar

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current       Location
	Open          []Location
	Closed        []Location
	Done          bool
	Found         bool
	Path          []Location
	TotalCost     float64
	StepIndex     int
	ExpandedNodes int
}

// Stepper drives a State one expansion at a time, using the worker pool
// to cost neighbors.
type Stepper struct {
	ctx       context.Context
	cancel    context.CancelFunc
	state     *State
	goal      Location
	heuristic Heuristic
	pool      *workerPool
	logger    log.FieldLogger

	maxExpansions int
	stepCount     int
	expandedNodes int
	current       Location
	goalWaypoint  *Waypoint
	done          bool
	found         bool
}

// NewStepper opens startLocation and starts the workers.
// Call Close when done with the stepper.
func NewStepper(
	parent context.Context,
	graphMap Map,
	startLocation Location,
	goalLocation Location,
	heuristic Heuristic,
	options ...Option,
) (*Stepper, error) {
	if heuristic == nil {
		return nil, fmt.Errorf("new stepper: %w: heuristic cannot be nil", ErrInvalidArgument)
	}
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	state, err := NewState(graphMap, options...)
	if err != nil {
		return nil, fmt.Errorf("new stepper: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Stepper{
		ctx:           ctx,
		cancel:        cancel,
		state:         state,
		goal:          goalLocation,
		heuristic:     heuristic,
		pool:          startWorkerPool(ctx, opts.NumberOfWorkers),
		logger:        opts.Logger,
		maxExpansions: opts.MaxExpansions,
		current:       startLocation,
	}

	start := NewWaypoint(startLocation, nil)
	start.SetCosts(0, heuristic(startLocation, goalLocation))
	state.AddOpenEntry(start)

	s.logger.WithFields(log.Fields{
		"start":   startLocation,
		"goal":    goalLocation,
		"workers": opts.NumberOfWorkers,
	}).Debug("search started")
	return s, nil
}

// Close stops the workers
func (s *Stepper) Close() {
	if s.cancel != nil {
		s.cancel()
		s.pool.wait()
	}
}

// State returns the bookkeeping the stepper works on.
func (s *Stepper) State() *State {
	return s.state
}

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper) Step() (StepSnapshot, error) {
	_, err := s.advance()
	return s.snapshot(), err
}

// advance pops the cheapest open waypoint, finishes if it is the goal,
// and otherwise closes it and relaxes its neighbors.
func (s *Stepper) advance() (bool, error) {
	if s.done {
		return true, nil
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return true, err
	}

	entry, ok := s.state.MinOpenEntry()
	if !ok {
		s.done = true
		s.logger.WithField("expanded", s.expandedNodes).Debug("open set exhausted")
		return true, nil
	}
	currentWaypoint := entry.(*Waypoint)
	s.current = currentWaypoint.Location()
	s.stepCount++

	// Goal check
	if s.current == s.goal {
		s.done = true
		s.found = true
		s.goalWaypoint = currentWaypoint
		s.logger.WithFields(log.Fields{
			"cost":     currentWaypoint.PreviousCost(),
			"expanded": s.expandedNodes,
		}).Debug("goal reached")
		return true, nil
	}
	if s.maxExpansions > 0 && s.expandedNodes >= s.maxExpansions {
		s.done = true
		return true, fmt.Errorf("after %d expansions: %w", s.expandedNodes, ErrExpansionLimit)
	}

	s.state.Close(s.current)
	s.expandedNodes++

	neighbors := s.state.Map().Neighbors(s.current)
	proposals, err := s.pool.expand(s.ctx, currentWaypoint, neighbors, s.goal, s.heuristic)
	if err != nil {
		s.done = true
		return true, err
	}
	for _, proposal := range proposals {
		if s.state.IsClosed(proposal.ToLocation) {
			continue
		}
		next := NewWaypoint(proposal.ToLocation, currentWaypoint)
		next.SetCosts(proposal.GScore, proposal.FCost)
		s.state.AddOpenEntry(next)
	}
	return false, nil
}

func (s *Stepper) snapshot() StepSnapshot {
	snapshot := StepSnapshot{
		Current:       s.current,
		Open:          s.state.OpenLocations(),
		Closed:        s.state.ClosedLocations(),
		Done:          s.done,
		Found:         s.found,
		StepIndex:     s.stepCount,
		ExpandedNodes: s.expandedNodes,
	}
	if s.found {
		snapshot.Path = s.goalWaypoint.Path()
		snapshot.TotalCost = s.goalWaypoint.PreviousCost()
	}
	return snapshot
}
