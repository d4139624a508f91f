package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reflaxess123/obedi/pkg/logger"
)

func TestFireCallsListenersInOrder(t *testing.T) {
	b := New()
	var got []string
	b.Listen("order.created", func(_ context.Context, p interface{}) { got = append(got, "a:"+p.(string)) })
	b.Listen("order.created", func(_ context.Context, p interface{}) { got = append(got, "b:"+p.(string)) })
	b.Listen("other", func(context.Context, interface{}) { got = append(got, "other") })

	b.Fire(context.Background(), "order.created", "1")
	assert.Equal(t, []string{"a:1", "b:1"}, got)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	logger.Discard()
	b := New()
	called := false
	b.Listen("e", func(context.Context, interface{}) { panic("boom") })
	b.Listen("e", func(context.Context, interface{}) { called = true })

	assert.NotPanics(t, func() { b.Fire(context.Background(), "e", nil) })
	assert.True(t, called)
}

func TestFireAsyncSurvivesCancelledContext(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	b.Listen("e", func(ctx context.Context, _ interface{}) {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		ctxErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	b.FireAsync(ctx, "e", nil)
	cancel()
	wg.Wait()
	assert.NoError(t, ctxErr)
}

func TestNilBusAndFlush(t *testing.T) {
	var nilBus *Bus
	assert.NotPanics(t, func() { nilBus.Fire(context.Background(), "e", nil) })

	b := New()
	called := false
	b.Listen("e", func(context.Context, interface{}) { called = true })
	b.Flush()
	b.Fire(context.Background(), "e", nil)
	assert.False(t, called)
}
