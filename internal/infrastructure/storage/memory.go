package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	articleapp "github.com/mpvestiario/backend/internal/application/article"
)

// ErrPhotoNotFound is returned by Get for an unknown key
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is a stored image
type Photo struct {
	Data        []byte
	ContentType string
}

// MemoryPhotoStorage keeps photos in process memory. It is meant for local
// development and tests: photos are lost on restart and are not shared
// between replicas. Download URLs point at BaseURL, which the HTTP layer
// serves from Get.
type MemoryPhotoStorage struct {
	// BaseURL is the public prefix of download URLs, for example
	// "http://localhost:8080/api/v1/photos"
	BaseURL string

	mu     sync.RWMutex
	photos map[string]Photo
}

// NewMemoryPhotoStorage creates a new MemoryPhotoStorage
func NewMemoryPhotoStorage(baseURL string) *MemoryPhotoStorage {
	return &MemoryPhotoStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		photos:  make(map[string]Photo),
	}
}

// Ensure MemoryPhotoStorage implements PhotoStorage
var _ articleapp.PhotoStorage = (*MemoryPhotoStorage)(nil)

// Upload stores a copy of data under storageKey
func (s *MemoryPhotoStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[storageKey] = Photo{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	return nil
}

// GenerateDownloadURL returns BaseURL/storageKey. The expiry is informative only.
func (s *MemoryPhotoStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(storageKey, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return s.BaseURL + "/" + strings.Join(escaped, "/"), time.Now().Add(expiresIn), nil
}

// DeleteObject removes a photo. Deleting a missing key succeeds.
func (s *MemoryPhotoStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.photos, storageKey)
	return nil
}

// Get returns the photo stored under storageKey
func (s *MemoryPhotoStorage) Get(storageKey string) (Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	photo, ok := s.photos[storageKey]
	if !ok {
		return Photo{}, ErrPhotoNotFound
	}
	return photo, nil
}

// Len returns the number of stored photos
func (s *MemoryPhotoStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}
