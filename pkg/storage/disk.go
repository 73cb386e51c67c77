// Package storage writes export files to a local directory or an
// S3-compatible bucket.
//
//	if err := storage.Connect(); err != nil { ... }
//	disk, _ := storage.Default()
//	_ = disk.Put(ctx, "reports/stock-analysis.json", data)
//	fmt.Println(disk.URL("reports/stock-analysis.json"))
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/logger"
)

// Disk is a flat object store addressed by slash-separated paths.
type Disk interface {
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// List returns every path under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	URL(path string) string
}

var ErrNotFound = errors.New("storage: file not found")

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultName = "local"
)

// Connect registers the local disk and, when S3_BUCKET is set, the s3 disk.
// STORAGE_DISK picks the default.
func Connect() error {
	local, err := NewLocal(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return err
	}
	Register("local", local)

	if config.StorageS3Bucket() != "" {
		s3d, err := NewS3(context.Background(), S3Options{
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
			Register("s3", s3d)
		}
	}

	mu.Lock()
	defaultName = config.StorageDefault()
	mu.Unlock()
	return nil
}

// Register installs d under name, replacing any previous disk.
func Register(name string, d Disk) {
	mu.Lock()
	defer mu.Unlock()
	disks[name] = d
}

// Use returns the disk registered under name.
func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk.
func Default() (Disk, error) {
	mu.RLock()
	name := defaultName
	mu.RUnlock()
	return Use(name)
}

// Names lists the registered disks.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(disks))
	for n := range disks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
