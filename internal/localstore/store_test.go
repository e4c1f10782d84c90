package localstore

import (
	"alcyxob/sets-tracker/internal/domain"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEmptyStore(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	sets, err := store.LoadSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)
	assert.NotNil(t, sets)

	pending, err := store.LoadPendingSync(ctx)
	require.NoError(t, err)
	assert.False(t, pending)

	deletes, err := store.LoadPendingDeletes(ctx)
	require.NoError(t, err)
	assert.Empty(t, deletes)
}

func TestSetsRoundTrip(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	reps := 5
	squat := domain.WorkoutType("squat")

	in := []domain.LoggedSet{{ID: "a", WorkoutType: &squat, Reps: &reps, CreatedAtISO: "2025-01-01T00:00:00.000Z", UpdatedAtISO: "2025-01-01T00:00:00.000Z"}}
	require.NoError(t, store.SaveSets(ctx, in))

	out, err := store.LoadSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPendingFlags(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	require.NoError(t, store.SavePendingSync(ctx, true))
	pending, err := store.LoadPendingSync(ctx)
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, store.SavePendingSync(ctx, false))
	_, present, err := store.get(ctx, KeyPendingSync)
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, store.SavePendingDeletes(ctx, []string{"x", "y"}))
	ids, err := store.LoadPendingDeletes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids)

	require.NoError(t, store.SavePendingDeletes(ctx, nil))
	ids, err = store.LoadPendingDeletes(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCorruptValuesReadAsEmpty(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	require.NoError(t, store.set(ctx, KeySets, "{not json"))
	require.NoError(t, store.set(ctx, KeyPendingDeletes, `"oops"`))

	sets, err := store.LoadSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)

	ids, err := store.LoadPendingDeletes(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeviceIDIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "local.db")

	store, err := Open(path)
	require.NoError(t, err)
	first, err := store.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 36)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	second, err := reopened.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
