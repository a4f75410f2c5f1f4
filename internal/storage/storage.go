// Package storage contains object storage abstractions for S3-compatible backends.
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrObjectTooLarge is returned by ReadObject when the object exceeds the limit.
var ErrObjectTooLarge = errors.New("object exceeds size limit")

const (
	documentPrefix = "documents"
	exportPrefix   = "exports"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DocumentKey is where an uploaded PDF lives: documents/<filename>.
func DocumentKey(filename string) string {
	return path.Join(documentPrefix, filename)
}

// ExportKey names a rendered report: exports/<analysisID>/<unix>.<ext>.
func ExportKey(analysisID, ext string, at time.Time) string {
	return path.Join(exportPrefix, analysisID, fmt.Sprintf("%d.%s", at.Unix(), ext))
}

// ReadObject downloads key fully into memory, refusing objects above limit bytes.
func ReadObject(ctx context.Context, s Storage, key string, limit int64) ([]byte, error) {
	rc, info, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if limit > 0 && info.Size > limit {
		return nil, ErrObjectTooLarge
	}
	r := io.Reader(rc)
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, ErrObjectTooLarge
	}
	return b, nil
}
