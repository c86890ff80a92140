package gridastar

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyMap is a map with no edges; State never asks it for anything.
type emptyMap struct{}

func (emptyMap) Neighbors(Location) []Neighbor { return nil }

type testEntry struct {
	location     Location
	previousCost float64
	totalCost    float64
}

func (e *testEntry) Location() Location    { return e.location }
func (e *testEntry) PreviousCost() float64 { return e.previousCost }
func (e *testEntry) TotalCost() float64    { return e.totalCost }

func entryAt(x, y int, previousCost, totalCost float64) *testEntry {
	return &testEntry{location: NewLocation(x, y), previousCost: previousCost, totalCost: totalCost}
}

func newTestState(t *testing.T) *State {
	t.Helper()
	logger, _ := test.NewNullLogger()
	state, err := NewState(emptyMap{}, WithLogger(logger))
	require.NoError(t, err)
	return state
}

func TestNewStateRejectsNilMap(t *testing.T) {
	state, err := NewState(nil)

	require.Error(t, err)
	assert.Nil(t, state)
	assert.True(t, errors.Is(err, ErrNilMap))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

type pointerMap struct{}

func (*pointerMap) Neighbors(Location) []Neighbor { return nil }

func TestNewStateRejectsTypedNilMap(t *testing.T) {
	var m *pointerMap
	state, err := NewState(m)

	assert.Nil(t, state)
	assert.True(t, errors.Is(err, ErrNilMap))

	state, err = NewState(&pointerMap{})
	require.NoError(t, err)
	assert.NotNil(t, state)
}

func TestNewStateIsEmpty(t *testing.T) {
	m := emptyMap{}
	state, err := NewState(m)
	require.NoError(t, err)

	assert.Equal(t, m, state.Map())
	assert.Equal(t, 0, state.NumOpenEntries())
	assert.Equal(t, 0, state.NumClosedEntries())
	_, ok := state.MinOpenEntry()
	assert.False(t, ok)
	assert.False(t, state.IsClosed(Location{}))
}

func TestAddOpenEntryRelaxation(t *testing.T) {
	tests := []struct {
		name          string
		candidateCost float64
		expectAdded   bool
	}{
		{"cheaper replaces", 3.0, true},
		{"equal keeps existing", 5.0, false},
		{"dearer keeps existing", 7.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestState(t)
			original := entryAt(2, 2, 5.0, 9.0)
			require.True(t, state.AddOpenEntry(original))

			candidate := entryAt(2, 2, tt.candidateCost, tt.candidateCost+4)
			assert.Equal(t, tt.expectAdded, state.AddOpenEntry(candidate))
			assert.Equal(t, 1, state.NumOpenEntries())

			stored, ok := state.OpenEntry(NewLocation(2, 2))
			require.True(t, ok)
			if tt.expectAdded {
				assert.Same(t, candidate, stored)
			} else {
				assert.Same(t, original, stored)
			}
		})
	}
}

func TestAddOpenEntryImprovementReordersMinimum(t *testing.T) {
	state := newTestState(t)
	state.AddOpenEntry(entryAt(0, 0, 4, 10))
	state.AddOpenEntry(entryAt(1, 0, 4, 8))

	minEntry, _ := state.MinOpenEntry()
	assert.Equal(t, NewLocation(1, 0), minEntry.Location())

	better := entryAt(0, 0, 1, 7)
	require.True(t, state.AddOpenEntry(better))
	minEntry, _ = state.MinOpenEntry()
	assert.Same(t, better, minEntry)
}

func TestAddOpenEntryRejectsInvalidCandidates(t *testing.T) {
	state := newTestState(t)

	assert.False(t, state.AddOpenEntry(nil))
	assert.False(t, state.AddOpenEntry(entryAt(0, 0, math.NaN(), 1)))
	assert.False(t, state.AddOpenEntry(entryAt(0, 0, 1, math.NaN())))
	assert.Equal(t, 0, state.NumOpenEntries())
}

func TestAddOpenEntryRefusesClosedLocation(t *testing.T) {
	state := newTestState(t)
	require.True(t, state.AddOpenEntry(entryAt(3, 3, 5, 5)))
	state.Close(NewLocation(3, 3))

	assert.False(t, state.AddOpenEntry(entryAt(3, 3, 1, 1)))
	assert.Equal(t, 0, state.NumOpenEntries())
	assert.True(t, state.IsClosed(NewLocation(3, 3)))
	_, open := state.OpenEntry(NewLocation(3, 3))
	assert.False(t, open)
}

func TestMinOpenEntrySelectsLowestTotalCost(t *testing.T) {
	state := newTestState(t)
	state.AddOpenEntry(entryAt(0, 0, 1, 10.0))
	state.AddOpenEntry(entryAt(1, 0, 1, 4.5))
	state.AddOpenEntry(entryAt(2, 0, 1, 7.2))

	minEntry, ok := state.MinOpenEntry()
	require.True(t, ok)
	assert.Equal(t, 4.5, minEntry.TotalCost())
	assert.Equal(t, NewLocation(1, 0), minEntry.Location())
	assert.Equal(t, 3, state.NumOpenEntries(), "MinOpenEntry must not remove anything")
}

func TestMinOpenEntryTieBreaksOnDiscoveryOrder(t *testing.T) {
	for run := 0; run < 20; run++ {
		state := newTestState(t)
		state.AddOpenEntry(entryAt(5, 5, 1, 3))
		state.AddOpenEntry(entryAt(0, 0, 1, 3))
		state.AddOpenEntry(entryAt(9, 1, 1, 3))

		minEntry, _ := state.MinOpenEntry()
		assert.Equal(t, NewLocation(5, 5), minEntry.Location())

		state.Close(NewLocation(5, 5))
		minEntry, _ = state.MinOpenEntry()
		assert.Equal(t, NewLocation(0, 0), minEntry.Location())
	}
}

func TestMinOpenEntryIgnoresMutationAfterInsert(t *testing.T) {
	state := newTestState(t)
	mutated := entryAt(0, 0, 1, 2)
	state.AddOpenEntry(mutated)
	state.AddOpenEntry(entryAt(1, 0, 1, 3))

	mutated.totalCost = 100
	minEntry, _ := state.MinOpenEntry()
	assert.Same(t, mutated, minEntry)
}

func TestCloseMovesEntry(t *testing.T) {
	state := newTestState(t)
	entry := entryAt(1, 1, 2, 6)
	state.AddOpenEntry(entry)
	state.AddOpenEntry(entryAt(2, 1, 2, 6))

	state.Close(NewLocation(1, 1))

	assert.Equal(t, 1, state.NumOpenEntries())
	assert.Equal(t, 1, state.NumClosedEntries())
	assert.True(t, state.IsClosed(NewLocation(1, 1)))
	closed, ok := state.ClosedEntry(NewLocation(1, 1))
	require.True(t, ok)
	assert.Same(t, entry, closed)
	assert.Equal(t, 2.0, closed.PreviousCost())
	assert.Equal(t, 6.0, closed.TotalCost())

	state.Close(NewLocation(1, 1))
	assert.Equal(t, 1, state.NumOpenEntries())
	assert.Equal(t, 1, state.NumClosedEntries())
}

func TestCloseUnknownLocationIsNoop(t *testing.T) {
	state := newTestState(t)
	state.AddOpenEntry(entryAt(0, 0, 0, 0))

	state.Close(NewLocation(4, 4))

	assert.Equal(t, 1, state.NumOpenEntries())
	assert.Equal(t, 0, state.NumClosedEntries())
	assert.False(t, state.IsClosed(NewLocation(4, 4)))
}

func TestOpenAndClosedLocationsAreSorted(t *testing.T) {
	state := newTestState(t)
	for _, location := range []Location{{2, 1}, {0, 2}, {1, 0}, {0, 1}, {3, 0}} {
		state.AddOpenEntry(&testEntry{location: location, totalCost: 1})
	}
	state.Close(NewLocation(0, 2))
	state.Close(NewLocation(3, 0))

	assert.Equal(t, []Location{{1, 0}, {0, 1}, {2, 1}}, state.OpenLocations())
	assert.Equal(t, []Location{{3, 0}, {0, 2}}, state.ClosedLocations())
}

func TestOpenAndClosedStayDisjoint(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	state := newTestState(t)

	for i := 0; i < 2000; i++ {
		location := NewLocation(random.Intn(8), random.Intn(8))
		if random.Intn(3) == 0 {
			state.Close(location)
		} else {
			cost := float64(random.Intn(20))
			state.AddOpenEntry(&testEntry{location: location, previousCost: cost, totalCost: cost + float64(random.Intn(5))})
		}

		for _, open := range state.OpenLocations() {
			require.False(t, state.IsClosed(open), "location %v both open and closed", open)
		}
		require.Equal(t, len(state.OpenLocations()), state.NumOpenEntries())
		require.Equal(t, len(state.ClosedLocations()), state.NumClosedEntries())
	}
}

func TestStateEndToEndScenario(t *testing.T) {
	state := newTestState(t)
	origin := entryAt(0, 0, 0, 5)
	right := entryAt(1, 0, 1, 3)

	assert.True(t, state.AddOpenEntry(origin))
	assert.Equal(t, 1, state.NumOpenEntries())
	assert.True(t, state.AddOpenEntry(right))
	assert.Equal(t, 2, state.NumOpenEntries())

	minEntry, ok := state.MinOpenEntry()
	require.True(t, ok)
	assert.Same(t, right, minEntry)

	state.Close(NewLocation(1, 0))
	assert.Equal(t, 1, state.NumOpenEntries())
	assert.True(t, state.IsClosed(NewLocation(1, 0)))

	minEntry, ok = state.MinOpenEntry()
	require.True(t, ok)
	assert.Same(t, origin, minEntry)
}

func TestStateLogsRefusals(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	state, err := NewState(emptyMap{}, WithLogger(logger))
	require.NoError(t, err)

	state.AddOpenEntry(entryAt(0, 0, 1, 1))
	state.Close(NewLocation(0, 0))
	state.AddOpenEntry(entryAt(0, 0, 0, 0))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "open entry refused: location closed", last.Message)
	assert.Equal(t, NewLocation(0, 0), last.Data["location"])
}
