package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const stubBaseURL = "https://storage.example.com"

var errEmptyKey = errors.New("storage key is required")

// StubObjectStorage fakes the presign flow for development and tests.
// URLs it returns are not usable; every object it is asked about exists,
// so submission flows that reference uploaded keys keep working without
// an S3 backend.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage returns a stub pointing at a placeholder host
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: stubBaseURL}
}

func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign("upload", storageKey, expiresIn)
}

func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign("download", storageKey, expiresIn)
}

// DeleteObject succeeds for any non-empty key
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	return nil
}

// ObjectExists reports true for any non-empty key
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	return true, nil
}

func (s *StubObjectStorage) presign(op, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	url := fmt.Sprintf("%s/%s/%s?expires=%s", s.BaseURL, op, storageKey, expiresAt.Format(time.RFC3339))
	return url, expiresAt, nil
}

var _ ObjectStorage = (*StubObjectStorage)(nil)
