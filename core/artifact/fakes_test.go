package artifact_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Hummify/core/synth"
	"Hummify/model"
	"Hummify/storage"
)

// fakeEngine returns a canned synthesis result or error and records calls.
type fakeEngine struct {
	result *synth.Result
	err    error
	calls  int
}

func (f *fakeEngine) Synthesize(ctx context.Context, instrument string, ns []model.Note) (*synth.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeStore is an in-memory object store with idempotent deletes.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploads   int
	uploadErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(ctx context.Context, data []byte, folder, ext string) (storage.ObjectRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return storage.ObjectRef{}, f.uploadErr
	}
	id := fmt.Sprintf("%s/object-%d%s", folder, f.uploads, ext)
	f.objects[id] = data
	return storage.ObjectRef{ObjectID: id, URL: f.URL(id)}, nil
}

func (f *fakeStore) Delete(ctx context.Context, objectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	// Idempotent: deleting a missing object is not an error.
	delete(f.objects, objectID)
	f.deleted = append(f.deleted, objectID)
	return nil
}

func (f *fakeStore) URL(objectID string) string {
	return "http://blobs.test/" + objectID
}

func (f *fakeStore) has(objectID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectID]
	return ok
}

// fakeConvertedRepo is an in-memory ConvertedRepository.
type fakeConvertedRepo struct {
	mu        sync.Mutex
	rows      map[int64]*model.ConvertedArtifact
	nextID    int64
	createErr error
}

func newFakeConvertedRepo() *fakeConvertedRepo {
	return &fakeConvertedRepo{rows: make(map[int64]*model.ConvertedArtifact)}
}

func (f *fakeConvertedRepo) CreateConverted(a *model.ConvertedArtifact) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	a.ID = f.nextID
	copied := *a
	f.rows[a.ID] = &copied
	return a.ID, nil
}

func (f *fakeConvertedRepo) GetConvertedByID(id int64) (*model.ConvertedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeConvertedRepo) GetConvertedOlderThan(cutoff time.Time) ([]*model.ConvertedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ConvertedArtifact
	for _, row := range f.rows {
		if row.CreatedAt.Before(cutoff) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeConvertedRepo) DeleteConverted(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

// fakeSavedRepo is an in-memory SavedRepository.
type fakeSavedRepo struct {
	mu        sync.Mutex
	rows      map[int64]*model.SavedArtifact
	nextID    int64
	createErr error
}

func newFakeSavedRepo() *fakeSavedRepo {
	return &fakeSavedRepo{rows: make(map[int64]*model.SavedArtifact)}
}

func (f *fakeSavedRepo) CreateSaved(a *model.SavedArtifact) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	a.ID = f.nextID
	copied := *a
	f.rows[a.ID] = &copied
	return a.ID, nil
}

func (f *fakeSavedRepo) GetSavedByID(id int64) (*model.SavedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeSavedRepo) GetSavedByIDAndUser(id, userID int64) (*model.SavedArtifact, error) {
	row, err := f.GetSavedByID(id)
	if err != nil || row == nil || row.UserID != userID {
		return nil, err
	}
	return row, nil
}

func (f *fakeSavedRepo) GetSavedByUserID(userID int64) ([]*model.SavedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.SavedArtifact, 0)
	for _, row := range f.rows {
		if row.UserID == userID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSavedRepo) ExistsByObjectID(objectID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ObjectID == objectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSavedRepo) DeleteSaved(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}
