package mapstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "maps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustParse(t *testing.T, text string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return g
}

func TestSaveLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	original := mustParse(t, "S.#\n.4.\n..G\n")
	original.Diagonal = true

	require.NoError(t, store.Save(ctx, "small", original))

	loaded, err := store.Load(ctx, "small")
	require.NoError(t, err)
	assert.Equal(t, original.String(), loaded.String())
	assert.True(t, loaded.Diagonal)
	assert.Equal(t, original.Start, loaded.Start)
	assert.Equal(t, original.Goal, loaded.Goal)
}

func TestSaveReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "m", mustParse(t, "S.G")))
	require.NoError(t, store.Save(ctx, "m", mustParse(t, "S#.G")))

	loaded, err := store.Load(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Width)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, names)
}

func TestSaveRejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.True(t, errors.Is(store.Save(ctx, "  ", mustParse(t, "S.G")), ErrInvalidName))

	blocked := mustParse(t, "S.G")
	require.NoError(t, blocked.Block(blocked.Goal))
	assert.True(t, errors.Is(store.Save(ctx, "blocked", blocked), grid.ErrStartBlocked))

	expensiveGoal := mustParse(t, "S.G")
	require.NoError(t, expensiveGoal.SetCost(expensiveGoal.Goal, 5))
	assert.True(t, errors.Is(store.Save(ctx, "lossy", expensiveGoal), grid.ErrLossyFormat))

	_, err := store.Load(ctx, "lossy")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveGeneratedKeepsCosts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	generated, err := grid.Generate(grid.GenerateOptions{Width: 20, Height: 15, Noise: 0.8, Seed: 5})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "generated", generated))
	loaded, err := store.Load(ctx, "generated")
	require.NoError(t, err)

	for y := 0; y < generated.Height; y++ {
		for x := 0; x < generated.Width; x++ {
			location := gridastar.NewLocation(x, y)
			assert.Equal(t, generated.Cost(location), loaded.Cost(location), "cost at %v", location)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"beta", "alpha", "gamma"} {
		require.NoError(t, store.Save(ctx, name, mustParse(t, "S.G")))
	}

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)

	require.NoError(t, store.Delete(ctx, "beta"))
	assert.True(t, errors.Is(store.Delete(ctx, "beta"), ErrNotFound))

	_, err = store.Load(ctx, "beta")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReopenKeepsMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "kept", mustParse(t, "S..G")))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "S..G\n", loaded.String())
	assert.Equal(t, path, reopened.Path())
}

func TestMemoryStore(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "m", mustParse(t, "S.G")))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, names)
}
