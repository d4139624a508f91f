package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	m.Run()
}

func TestSubmitRunsEveryTask(t *testing.T) {
	pool := New(4)

	var count atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			count.Add(1)
		}))
	}
	pool.Shutdown()

	assert.EqualValues(t, 50, count.Load())
}

func TestSubmitHonoursContext(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
		started.Done()
		<-release
	}))
	started.Wait()
	// fills the single buffered slot
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(context.Background(), func(context.Context) {}), ErrPoolClosed)
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := New(1)

	var ran atomic.Bool
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { panic("boom") }))
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { ran.Store(true) }))
	pool.Shutdown()

	assert.True(t, ran.Load())
}
