package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryDisk keeps objects in a map. Failures can be injected per operation.
type MemoryDisk struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string

	// PutErr and DeleteErr, when non-nil, are returned instead of performing
	// the operation.
	PutErr    error
	DeleteErr error
}

func NewMemoryDisk(baseURL string) *MemoryDisk {
	return &MemoryDisk{objects: map[string][]byte{}, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *MemoryDisk) Put(_ context.Context, path string, content []byte, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.PutErr != nil {
		return d.PutErr
	}
	d.objects[path] = append([]byte(nil), content...)
	return nil
}

func (d *MemoryDisk) Get(_ context.Context, path string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.objects[path]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), b...), nil
}

func (d *MemoryDisk) Exists(_ context.Context, path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.objects[path]
	return ok
}

func (d *MemoryDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	delete(d.objects, path)
	return nil
}

func (d *MemoryDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *MemoryDisk) AllFiles(_ context.Context, directory string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	prefix := strings.Trim(directory, "/")
	if prefix != "" {
		prefix += "/"
	}
	var out []string
	for k := range d.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Len returns the number of stored objects.
func (d *MemoryDisk) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}
