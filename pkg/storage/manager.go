package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/reflaxess123/obedi/config"
	"github.com/reflaxess123/obedi/pkg/logger"
)

// Manager holds the configured disks. It is built once at boot and passed
// to the components that need storage.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// NewManager boots the disks described by the configuration. The local disk
// is always available; the s3 disk is added when S3_BUCKET is set.
func NewManager(ctx context.Context) (*Manager, error) {
	m := &Manager{
		disks:       map[string]Disk{},
		defaultDisk: config.StorageDefault(),
	}
	m.disks["local"] = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	if _, ok := m.disks[m.defaultDisk]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", m.defaultDisk)
	}
	return m, nil
}

// NewManagerWith builds a Manager around a single disk. Used by tests.
func NewManagerWith(name string, d Disk) *Manager {
	return &Manager{disks: map[string]Disk{name: d}, defaultDisk: name}
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	return d, ok
}

// Register plugs in a custom Disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Default returns the disk named by STORAGE_DISK.
func (m *Manager) Default() Disk {
	d, _ := m.Use(m.defaultDisk)
	return d
}

// DefaultName is the name of the default disk.
func (m *Manager) DefaultName() string { return m.defaultDisk }
