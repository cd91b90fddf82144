package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"transcribe-beautifier/internal/app/errors"
)

// MemoryStore is an in-process ObjectStore. It backs tests and dry runs.
type MemoryStore struct {
	mu          sync.RWMutex
	objects     map[ObjectRef][]byte
	contentType map[ObjectRef]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:     make(map[ObjectRef][]byte),
		contentType: make(map[ObjectRef]string),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, key, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Wrapf(err, "upload %s", localPath)
	}
	return m.Put(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), "application/octet-stream")
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[ObjectRef{Bucket: bucket, Key: key}]
	if !ok {
		return nil, errors.NotFound(bucket, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", bucket, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ref := ObjectRef{Bucket: bucket, Key: key}
	m.objects[ref] = data
	m.contentType[ref] = contentType
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := ObjectRef{Bucket: bucket, Key: key}
	delete(m.objects, ref)
	delete(m.contentType, ref)
	return nil
}

func (m *MemoryStore) MediaURI(_ context.Context, bucket, key string) (string, error) {
	return ObjectRef{Bucket: bucket, Key: key}.String(), nil
}

// Object returns a stored object's bytes.
func (m *MemoryStore) Object(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[ObjectRef{Bucket: bucket, Key: key}]
	return data, ok
}

// ContentType returns the content type an object was stored with.
func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contentType[ObjectRef{Bucket: bucket, Key: key}]
}

// Keys lists the stored keys of a bucket in lexical order.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for ref := range m.objects {
		if ref.Bucket == bucket {
			keys = append(keys, ref.Key)
		}
	}
	sort.Strings(keys)
	return keys
}
