package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*MemoryImageStore)(nil)

// StoredObject is an object held by MemoryImageStore
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryImageStore keeps images in process memory. It backs local
// development when no bucket is configured.
type MemoryImageStore struct {
	// BaseURL prefixes generated download links
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryImageStore creates an empty MemoryImageStore
func NewMemoryImageStore(baseURL string) *MemoryImageStore {
	if baseURL == "" {
		baseURL = "http://localhost/images"
	}
	return &MemoryImageStore{
		BaseURL: baseURL,
		objects: make(map[string]StoredObject),
	}
}

// Upload stores a copy of data under storageKey
func (s *MemoryImageStore) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = StoredObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// GenerateDownloadURL returns BaseURL/key with the expiry as a query parameter
func (s *MemoryImageStore) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiry
	}
	expiresAt := time.Now().Add(expiresIn)
	link := s.BaseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// DeleteObject removes storageKey
func (s *MemoryImageStore) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// Object returns the stored object for storageKey
func (s *MemoryImageStore) Object(storageKey string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
