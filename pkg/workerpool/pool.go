// Package workerpool runs tasks on a fixed number of goroutines.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//	for _, key := range keys {
//	    if err := pool.Submit(ctx, func(ctx context.Context) { purge(ctx, key) }); err != nil {
//	        break
//	    }
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/reflaxess123/obedi/pkg/logger"
)

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Task is a unit of work. It receives the context it was submitted with.
type Task func(ctx context.Context)

type job struct {
	ctx  context.Context
	task Task
}

// Pool is a bounded goroutine pool.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	closeCh chan struct{}
	once    sync.Once
}

// New starts size workers (at least one).
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		jobs:    make(chan job, size),
		closeCh: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit blocks until a worker slot frees up, ctx is done or the pool is
// shut down.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job{ctx: ctx, task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeCh:
		return ErrPoolClosed
	}
}

// Shutdown stops accepting tasks and waits for the queued ones to finish.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		run(j)
	}
}

// run executes one task; a panic is logged and the worker keeps going.
func run(j job) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(j.ctx).Error("workerpool: task panicked", "error", fmt.Sprint(r))
		}
	}()
	j.task(j.ctx)
}
