// Package jobs holds the queued background jobs.
package jobs

import (
	"context"

	"github.com/reflaxess123/obedi/pkg/queue"
)

// ObjectDeleter removes a stored object by key.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// PurgeStorageObject retries the deletion of an object whose owning rows
// are already gone. Exhausted attempts land in failed_jobs.
type PurgeStorageObject struct {
	Key string `json:"key"`

	store ObjectDeleter
}

// NewPurgeStorageObject builds a job for key.
func NewPurgeStorageObject(store ObjectDeleter, key string) *PurgeStorageObject {
	return &PurgeStorageObject{Key: key, store: store}
}

func (j *PurgeStorageObject) Handle(ctx context.Context) error {
	return j.store.Delete(ctx, j.Key)
}

// Register makes every job type known to m. Jobs are rebuilt around store
// when they are popped.
func Register(m *queue.Manager, store ObjectDeleter) {
	m.Register(func() queue.Job { return &PurgeStorageObject{store: store} })
}
