package gridastar

import (
	"container/heap"
	"fmt"
	"math"
	"reflect"
	"sort"

	log "github.com/sirupsen/logrus"
)

// State holds the open and closed entries of one A* run.
//
// Every location has at most one open entry and at most one closed entry,
// and never both. State is not safe for concurrent use; the driver that
// created it owns it for the whole run.
type State struct {
	graphMap Map

	openSet    openQueue
	openSetMap map[Location]*openItem
	closedSet  map[Location]Entry

	sequence uint64
	logger   log.FieldLogger
}

// NewState returns an empty state over m. A nil map, including a nil
// pointer stored in m, is rejected with ErrNilMap.
func NewState(m Map, options ...Option) (*State, error) {
	if isNilMap(m) {
		return nil, fmt.Errorf("new state: %w", ErrNilMap)
	}
	stateOptions := defaultOptions()
	for _, option := range options {
		option(&stateOptions)
	}

	state := &State{
		graphMap:   m,
		openSet:    make(openQueue, 0),
		openSetMap: make(map[Location]*openItem),
		closedSet:  make(map[Location]Entry),
		logger:     stateOptions.Logger,
	}
	heap.Init(&state.openSet)
	return state, nil
}

// Map returns the map the search runs over.
func (s *State) Map() Map {
	return s.graphMap
}

// MinOpenEntry returns the open entry with the lowest total cost.
// Among equal costs the location opened first wins.
// It reports false when nothing is open.
func (s *State) MinOpenEntry() (Entry, bool) {
	if s.openSet.Len() == 0 {
		return nil, false
	}
	return s.openSet[0].Entry, true
}

// AddOpenEntry stores candidate as the open entry for its location, or
// replaces the current one if candidate reached the location more cheaply.
// Equal previous costs keep the existing entry. Candidates for closed
// locations are refused. It reports whether candidate was stored.
func (s *State) AddOpenEntry(candidate Entry) bool {
	if candidate == nil {
		s.logger.Debug("open entry refused: nil entry")
		return false
	}
	location := candidate.Location()
	fields := log.Fields{
		"location":      location,
		"previous_cost": candidate.PreviousCost(),
		"total_cost":    candidate.TotalCost(),
	}

	if math.IsNaN(candidate.PreviousCost()) || math.IsNaN(candidate.TotalCost()) {
		s.logger.WithFields(fields).Debug("open entry refused: NaN cost")
		return false
	}
	if _, closed := s.closedSet[location]; closed {
		s.logger.WithFields(fields).Debug("open entry refused: location closed")
		return false
	}

	item, exists := s.openSetMap[location]
	if !exists {
		s.sequence++
		item = &openItem{
			Entry:     candidate,
			TotalCost: candidate.TotalCost(),
			Sequence:  s.sequence,
		}
		heap.Push(&s.openSet, item)
		s.openSetMap[location] = item
		s.logger.WithFields(fields).Debug("open entry added")
		return true
	}

	if candidate.PreviousCost() < item.Entry.PreviousCost() {
		item.Entry = candidate
		item.TotalCost = candidate.TotalCost()
		heap.Fix(&s.openSet, item.IndexInQueue)
		s.logger.WithFields(fields).Debug("open entry improved")
		return true
	}
	return false
}

// NumOpenEntries returns how many locations are open.
func (s *State) NumOpenEntries() int {
	return len(s.openSetMap)
}

// NumClosedEntries returns how many locations are closed.
func (s *State) NumClosedEntries() int {
	return len(s.closedSet)
}

// Close moves the open entry at location to the closed set unchanged.
// Locations without an open entry are left alone.
func (s *State) Close(location Location) {
	item, exists := s.openSetMap[location]
	if !exists {
		return
	}
	heap.Remove(&s.openSet, item.IndexInQueue)
	delete(s.openSetMap, location)
	s.closedSet[location] = item.Entry

	s.logger.WithFields(log.Fields{
		"location": location,
		"open":     len(s.openSetMap),
		"closed":   len(s.closedSet),
	}).Debug("location closed")
}

// IsClosed reports whether location has a closed entry.
func (s *State) IsClosed(location Location) bool {
	_, closed := s.closedSet[location]
	return closed
}

// OpenEntry returns the open entry at location, if any.
func (s *State) OpenEntry(location Location) (Entry, bool) {
	item, exists := s.openSetMap[location]
	if !exists {
		return nil, false
	}
	return item.Entry, true
}

// ClosedEntry returns the closed entry at location, if any.
func (s *State) ClosedEntry(location Location) (Entry, bool) {
	entry, exists := s.closedSet[location]
	return entry, exists
}

// OpenLocations lists the open locations row by row.
func (s *State) OpenLocations() []Location {
	locations := make([]Location, 0, len(s.openSetMap))
	for location := range s.openSetMap {
		locations = append(locations, location)
	}
	sortLocations(locations)
	return locations
}

// ClosedLocations lists the closed locations row by row.
func (s *State) ClosedLocations() []Location {
	locations := make([]Location, 0, len(s.closedSet))
	for location := range s.closedSet {
		locations = append(locations, location)
	}
	sortLocations(locations)
	return locations
}

func sortLocations(locations []Location) {
	sort.Slice(locations, func(i, j int) bool { return locations[i].less(locations[j]) })
}

func isNilMap(m Map) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
