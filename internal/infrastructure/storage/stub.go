package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	catalogapp "github.com/lumina/storefront/internal/application/catalog"
)

// StubImageStorage keeps uploads in memory and returns deterministic
// /uploads/<key> paths. Used when object storage is disabled.
type StubImageStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

var _ catalogapp.ImageStorage = (*StubImageStorage)(nil)

// NewStubImageStorage creates a stub rooted at /uploads
func NewStubImageStorage() *StubImageStorage {
	return &StubImageStorage{BaseURL: "/uploads", objects: make(map[string][]byte)}
}

// PutImage records the bytes and returns BaseURL/key
func (s *StubImageStorage) PutImage(_ context.Context, key, _ string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return strings.TrimRight(s.BaseURL, "/") + "/" + key, nil
}

// Object returns the stored bytes for key
func (s *StubImageStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
