package ports

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCheckpoint(id string) *domain.Checkpoint {
	return &domain.Checkpoint{
		ID:      id,
		Machine: "binary-increment",
		Inputs:  []string{"11"},
		State:   "q1",
		Step:    4,
		Status:  domain.StatusRunning,
		Tapes: []domain.TapeCheckpoint{
			{Offset: 1, Cells: []domain.Symbol{"1", "0", "0", "_"}, Head: -1},
		},
	}
}

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cp := sampleCheckpoint(runID)
		require.NoError(t, store.Save(ctx, runID, cp), "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp, loaded, "checkpoint must survive storage unchanged")
	})

	t.Run("Save overwrites", func(t *testing.T) {
		cp := sampleCheckpoint(runID)
		cp.Step = 5
		cp.Status = domain.StatusAccepted
		require.NoError(t, store.Save(ctx, runID, cp))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, 5, loaded.Step)
		assert.Equal(t, domain.StatusAccepted, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, runID, sampleCheckpoint(runID)))

		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, id1, sampleCheckpoint(id1)))
		require.NoError(t, store.Save(ctx, id2, sampleCheckpoint(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

// RunMachineLoaderContract verifies a MachineLoader that was seeded with the given names.
func RunMachineLoaderContract(t *testing.T, loader MachineLoader, names ...string) {
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		listed, err := loader.List(ctx)
		require.NoError(t, err)
		assert.True(t, slices.IsSorted(listed), "names must be sorted: %v", listed)
		for _, n := range names {
			assert.Contains(t, listed, n)
		}
	})

	t.Run("Get", func(t *testing.T) {
		for _, n := range names {
			def, err := loader.Get(ctx, n)
			require.NoError(t, err, n)
			assert.Equal(t, n, def.Name)
			_, err = def.Compile()
			assert.NoError(t, err, n)
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		_, err := loader.Get(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})
}
