package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reflaxess123/obedi/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	m.Run()
}

func TestEntriesFireOnInterval(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int64
	s.Every(10 * time.Millisecond).Name("count").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestWithoutOverlappingSkipsBusyTask(t *testing.T) {
	s := New()
	s.tick = 2 * time.Millisecond

	var active, maxActive atomic.Int64
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	s.Start(ctx)
	<-ctx.Done()
	s.Wait()

	assert.EqualValues(t, 1, maxActive.Load())
}

func TestListDescribesEntries(t *testing.T) {
	s := New()
	s.Every(time.Hour).Name("storage:sweep").Run(func(context.Context) error { return nil })
	s.Every(time.Minute).Run(func(context.Context) error { return nil })

	assert.Equal(t, []string{"storage:sweep (every 1h0m0s)", "task-2 (every 1m0s)"}, s.List())
}
