package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	backend "github.com/redis/go-redis/v9"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, runID)
}

func newManager(t *testing.T, opts ...session.Option) *session.Manager {
	t.Helper()
	loader, err := memory.NewBuiltinLoader()
	require.NoError(t, err)
	return session.NewManager(SlowStore{memory.NewStore()}, loader, opts...)
}

func TestManager_Lifecycle(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()

	run, err := mgr.Create(ctx, "bit-flip", []string{"1011"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, domain.StatusReady, run.Status)
	assert.Equal(t, []string{"1011"}, run.Inputs)

	run, res, err := mgr.Step(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Step)
	assert.Equal(t, []domain.Symbol{"1"}, res.Read)
	assert.Equal(t, "0011", run.Content[0])

	run, runRes, err := mgr.Run(ctx, run.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccept, runRes.Verdict)
	assert.Len(t, runRes.Steps, 4)
	assert.Equal(t, domain.StatusAccepted, run.Status)
	assert.Equal(t, "0100", run.Content[0])

	got, err := mgr.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Step)

	_, res, err = mgr.Step(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, res.NoOp, "halted runs do not move")

	run, err = mgr.Reset(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Step)
	assert.Equal(t, "1011", run.Content[0])

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, run.ID)

	require.NoError(t, mgr.Delete(ctx, run.ID))
	_, err = mgr.Get(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestManager_CreateErrors(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()

	_, err := mgr.Create(ctx, "no-such-machine", nil)
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)

	_, err = mgr.Create(ctx, "pattern-101", []string{"101"})
	assert.ErrorIs(t, err, domain.ErrNondeterministicTable)

	_, err = mgr.Create(ctx, "bit-flip", []string{"0", "1"})
	assert.ErrorIs(t, err, domain.ErrTapeCount)
}

func TestManager_RunRequiresLimit(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	run, err := mgr.Create(ctx, "bit-flip", []string{"1"})
	require.NoError(t, err)

	_, _, err = mgr.Run(ctx, run.ID, 0)
	assert.ErrorIs(t, err, domain.ErrStepLimitRequired)
}

func TestManager_ConcurrentStepsAreSerialized(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	run, err := mgr.Create(ctx, "binary-increment", []string{"1111111111"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	concurrent := 8
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Step(ctx, run.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := mgr.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, concurrent, got.Step, "no step may be lost to a read-modify-write race")
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mgr := newManager(t, session.WithLocker(redis.NewLocker(client, "test:"), time.Second))
	ctx := context.Background()

	run, err := mgr.Create(ctx, "bit-flip", []string{"01"})
	require.NoError(t, err)
	_, _, err = mgr.Run(ctx, run.ID, 10)
	require.NoError(t, err)

	assert.False(t, mr.Exists("test:lock:"+run.ID), "lock released after the operation")
}

func TestManager_CanceledRunKeepsProgress(t *testing.T) {
	mgr := newManager(t)
	run, err := mgr.Create(context.Background(), "bit-flip", []string{"0101"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, res, err := mgr.Run(ctx, run.ID, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.VerdictUndetermined, res.Verdict)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		run, err := mgr.Create(ctx, "bit-flip", []string{"1"})
		require.NoError(t, err)
		_, _, err = mgr.Step(ctx, run.ID)
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, run.ID))
	}

	assert.Zero(t, mgr.LockCount(), "lock entries must be released once unused")
}
