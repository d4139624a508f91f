package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/queue"
	"github.com/reflaxess123/obedi/pkg/storage"
)

func TestMain(m *testing.M) {
	logger.Discard()
	m.Run()
}

func TestPurgeRunsThroughQueue(t *testing.T) {
	disk := storage.NewMemoryDisk("http://files.test")
	gw := storage.NewGateway(disk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, disk.Put(ctx, "lunches/1/a.png", []byte("x"), "image/png"))

	q := queue.New(queue.NewMemoryDriver(), queue.WithBackoff(time.Millisecond))
	Register(q, gw)
	wg := q.StartWorkers(ctx, 1)

	require.NoError(t, q.Dispatch(ctx, NewPurgeStorageObject(gw, "lunches/1/a.png")))
	assert.Eventually(t, func() bool { return disk.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	assert.Empty(t, q.FailedJobs())
}

func TestPurgeExhaustsRetries(t *testing.T) {
	disk := storage.NewMemoryDisk("http://files.test")
	disk.DeleteErr = errors.New("bucket offline")
	gw := storage.NewGateway(disk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.New(queue.NewMemoryDriver(), queue.WithMaxRetry(2), queue.WithBackoff(time.Millisecond))
	Register(q, gw)
	wg := q.StartWorkers(ctx, 1)

	require.NoError(t, q.Dispatch(ctx, NewPurgeStorageObject(gw, "lunches/1/a.png")))
	assert.Eventually(t, func() bool { return len(q.FailedJobs()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	failed := q.FailedJobs()[0]
	assert.Equal(t, 2, failed.Attempts)
	assert.Equal(t, "lunches/1/a.png", failed.Job.(*PurgeStorageObject).Key)
	var delErr *storage.DeleteError
	assert.ErrorAs(t, failed.Err, &delErr)
}
