// Package storage stores uploaded files on a named disk.
//
// Two drivers exist: "local" (a directory on this host, served under
// /storage) and "s3" (AWS S3 or any S3-compatible store). STORAGE_DISK picks
// the default.
//
//	m, _ := storage.FromConfig(ctx)
//	_ = m.Default().Put(ctx, "1700000000000_ab12.png", file, "image/png")
//	url := m.Default().URL("1700000000000_ab12.png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("storage: file not found")

// Disk is one storage backend. Keys use forward slashes.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}
