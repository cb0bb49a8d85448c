// Package blob stores product photos by content address.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrNotFound is returned when no blob exists for an id.
var ErrNotFound = errors.New("blob not found")

// Blob is a stored payload with its media type.
type Blob struct {
	Data        []byte
	ContentType string
}

// Store persists blobs addressed by the sha256 of their content. Put is
// idempotent: storing identical bytes twice yields the same id.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) (*Blob, error)
	Delete(ctx context.Context, id string) error
}

// Key returns the content address of data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

// Put stores data and returns its content address.
func (s *MemoryStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	id := Key(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		s.blobs[id] = Blob{Data: append([]byte(nil), data...), ContentType: contentType}
	}
	return id, nil
}

// Get returns a copy of the blob stored under id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Blob{Data: append([]byte(nil), b.Data...), ContentType: b.ContentType}, nil
}

// Delete removes the blob; deleting a missing id is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
