package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/storage"
	"github.com/reflaxess123/obedi/pkg/workerpool"
)

// SweepReport summarises one reconciliation pass.
type SweepReport struct {
	Scanned  int
	Orphans  []string
	Deleted  int
	Failed   int
	Deferred int
}

// StorageSweeper removes stored lunch images that no image row references.
// Objects are only deleted once they have been unreferenced on two
// consecutive passes, so an upload whose row is still being written is
// left alone.
type StorageSweeper struct {
	lunches *repositories.LunchRepository
	disk    storage.Disk
	store   ObjectStore
	workers int
	prefix  string

	mu       sync.Mutex
	suspects map[string]bool
}

func NewStorageSweeper(lunches *repositories.LunchRepository, disk storage.Disk, store ObjectStore, workers int) *StorageSweeper {
	return &StorageSweeper{
		lunches:  lunches,
		disk:     disk,
		store:    store,
		workers:  workers,
		prefix:   "lunches",
		suspects: map[string]bool{},
	}
}

// Sweep runs one pass. With immediate set, every orphan is deleted right
// away; otherwise only those already seen on the previous pass are. With
// dryRun set nothing is deleted and no suspects are recorded.
func (s *StorageSweeper) Sweep(ctx context.Context, immediate, dryRun bool) (SweepReport, error) {
	var rep SweepReport

	files, err := s.disk.AllFiles(ctx, s.prefix)
	if err != nil {
		return rep, err
	}
	rep.Scanned = len(files)

	known, err := s.lunches.ImageKeys(ctx)
	if err != nil {
		return rep, err
	}

	// A dry run reports against the recorded suspects but leaves them as
	// they are, so it never counts as a confirming pass.
	s.mu.Lock()
	previous := s.suspects
	next := map[string]bool{}
	var doomed []string
	for _, f := range files {
		if known[f] {
			continue
		}
		rep.Orphans = append(rep.Orphans, f)
		if immediate || previous[f] {
			doomed = append(doomed, f)
		} else {
			next[f] = true
			rep.Deferred++
		}
	}
	if !dryRun {
		s.suspects = next
	}
	s.mu.Unlock()

	if dryRun || len(doomed) == 0 {
		return rep, nil
	}

	var deleted, failed atomic.Int64
	pool := workerpool.New(s.workers)
	for _, key := range doomed {
		err := pool.Submit(ctx, func(ctx context.Context) {
			if err := s.store.Delete(ctx, key); err != nil {
				logger.WithCtx(ctx).Warn("sweep: delete failed", "key", key, "error", err)
				failed.Add(1)
				return
			}
			deleted.Add(1)
		})
		if err != nil {
			break
		}
	}
	pool.Shutdown()

	rep.Deleted = int(deleted.Load())
	rep.Failed = int(failed.Load())
	logger.WithCtx(ctx).Info("sweep: done",
		"scanned", rep.Scanned, "orphans", len(rep.Orphans), "deleted", rep.Deleted, "failed", rep.Failed)
	return rep, ctx.Err()
}
