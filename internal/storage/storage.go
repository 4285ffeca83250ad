// Package storage writes export snapshots to S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions describe an upload. Size is the exact number of bytes, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports back after an upload.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Storage is the subset of an object store the exporter needs.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a download URL for key that stops working after expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
