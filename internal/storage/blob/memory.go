package blob

import (
	"bytes"
	"context"
	"io"
	"sync"

	"portal/internal/domain"
	docsysSvc "portal/internal/domain/services/docsystem"
)

// MemoryStore keeps content in a map. For tests and throwaway dev servers.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores content under key
func (s *MemoryStore) Put(ctx context.Context, key string, content io.Reader) (*docsysSvc.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validKey(key); err != nil {
		return nil, err
	}
	mimeType, body, err := sniff(content)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()

	return &docsysSvc.BlobInfo{SizeBytes: int64(len(data)), MimeType: mimeType}, nil
}

// Open returns a reader over a copy-free view of the stored bytes
func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFound("blob", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes key; missing keys are ignored
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key is stored
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

var _ docsysSvc.BlobStore = (*MemoryStore)(nil)

// Len returns the number of stored blobs
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
