package service

import (
	"context"
	"errors"
	"sync"
)

// fakeStorage is an in-memory ObjectStorage for service tests. Individual
// operations can be made to fail to exercise degradation paths.
type fakeStorage struct {
	mu sync.Mutex

	failPresign bool
	failDelete  bool

	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{}
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPresign {
		return "", errors.New("storage unavailable")
	}
	return "https://storage.test/upload/" + key, nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPresign {
		return "", errors.New("storage unavailable")
	}
	return "https://storage.test/get/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
