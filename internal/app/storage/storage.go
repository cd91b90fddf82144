package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// ObjectRef identifies an object in a bucket.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (r ObjectRef) String() string {
	return "s3://" + r.Bucket + "/" + r.Key
}

// Base returns the last path element of the key.
func (r ObjectRef) Base() string {
	return path.Base(r.Key)
}

// Notification is one object-created event, or a listener failure.
type Notification struct {
	Ref ObjectRef
	Err error
}

// ObjectStore is the object storage the pipeline reads from and writes to.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, localPath string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	// MediaURI returns a location the transcription service can read the object from.
	MediaURI(ctx context.Context, bucket, key string) (string, error)
}

// Listener streams object-created notifications for keys under prefix
// ending in suffix.
type Listener interface {
	Listen(ctx context.Context, bucket, prefix, suffix string) <-chan Notification
}

// JoinKey joins key segments with single slashes.
func JoinKey(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "/")
}
