package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Hummify/model"
	"Hummify/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecordingRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.UploadedRecording
}

func newMemRecordingRepo() *memRecordingRepo {
	return &memRecordingRepo{rows: make(map[int64]*model.UploadedRecording)}
}

func (m *memRecordingRepo) CreateRecording(rec *model.UploadedRecording) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = int64(len(m.rows) + 1)
	}
	copied := *rec
	m.rows[rec.ID] = &copied
	return rec.ID, nil
}

func (m *memRecordingRepo) GetRecordingByID(id int64) (*model.UploadedRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memRecordingRepo) GetRecordingsByUserID(userID int64) ([]*model.UploadedRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UploadedRecording
	for _, row := range m.rows {
		if row.UserID == userID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRecordingRepo) GetRecordingsOlderThan(cutoff time.Time) ([]*model.UploadedRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UploadedRecording
	for _, row := range m.rows {
		if row.CreatedAt.Before(cutoff) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRecordingRepo) DeleteRecording(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memRecordingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memConvertedRepo struct {
	mu        sync.Mutex
	rows      map[int64]*model.ConvertedArtifact
	deleteErr map[int64]error
}

func newMemConvertedRepo() *memConvertedRepo {
	return &memConvertedRepo{
		rows:      make(map[int64]*model.ConvertedArtifact),
		deleteErr: make(map[int64]error),
	}
}

func (m *memConvertedRepo) CreateConverted(a *model.ConvertedArtifact) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = int64(len(m.rows) + 1)
	}
	copied := *a
	m.rows[a.ID] = &copied
	return a.ID, nil
}

func (m *memConvertedRepo) GetConvertedByID(id int64) (*model.ConvertedArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memConvertedRepo) GetConvertedOlderThan(cutoff time.Time) ([]*model.ConvertedArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConvertedArtifact
	for _, row := range m.rows {
		if row.CreatedAt.Before(cutoff) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memConvertedRepo) DeleteConverted(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	delete(m.rows, id)
	return nil
}

func (m *memConvertedRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memSavedRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.SavedArtifact
}

func newMemSavedRepo() *memSavedRepo {
	return &memSavedRepo{rows: make(map[int64]*model.SavedArtifact)}
}

func (m *memSavedRepo) CreateSaved(a *model.SavedArtifact) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = int64(len(m.rows) + 1)
	}
	copied := *a
	m.rows[a.ID] = &copied
	return a.ID, nil
}

func (m *memSavedRepo) GetSavedByID(id int64) (*model.SavedArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memSavedRepo) GetSavedByIDAndUser(id, userID int64) (*model.SavedArtifact, error) {
	row, err := m.GetSavedByID(id)
	if err != nil || row == nil || row.UserID != userID {
		return nil, err
	}
	return row, nil
}

func (m *memSavedRepo) GetSavedByUserID(userID int64) ([]*model.SavedArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SavedArtifact
	for _, row := range m.rows {
		if row.UserID == userID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memSavedRepo) ExistsByObjectID(objectID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ObjectID == objectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSavedRepo) DeleteSaved(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memStore struct {
	mu        sync.Mutex
	objects   map[string]struct{}
	deleteErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]struct{}), deleteErr: make(map[string]error)}
}

func (m *memStore) put(objectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectID] = struct{}{}
}

func (m *memStore) Upload(ctx context.Context, data []byte, folder, ext string) (storage.ObjectRef, error) {
	return storage.ObjectRef{}, errors.New("not used in these tests")
}

func (m *memStore) Delete(ctx context.Context, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[objectID]; err != nil {
		return err
	}
	delete(m.objects, objectID)
	return nil
}

func (m *memStore) URL(objectID string) string {
	return "http://blobs.test/" + objectID
}

func (m *memStore) has(objectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectID]
	return ok
}

type sweeperFixture struct {
	recordings *memRecordingRepo
	converted  *memConvertedRepo
	saved      *memSavedRepo
	store      *memStore
	sweeper    *Sweeper
}

func newSweeperFixture(retention, interval time.Duration) *sweeperFixture {
	f := &sweeperFixture{
		recordings: newMemRecordingRepo(),
		converted:  newMemConvertedRepo(),
		saved:      newMemSavedRepo(),
		store:      newMemStore(),
	}
	f.sweeper = NewSweeper(f.recordings, f.converted, f.saved, f.store, nil, retention, interval)
	return f
}

func (f *sweeperFixture) addRecording(id int64, objectID string, age time.Duration) {
	f.store.put(objectID)
	f.recordings.CreateRecording(&model.UploadedRecording{
		ID:        id,
		UserID:    1,
		ObjectID:  objectID,
		CreatedAt: time.Now().Add(-age),
	})
}

func (f *sweeperFixture) addConverted(id int64, objectID string, age time.Duration) {
	f.store.put(objectID)
	f.converted.CreateConverted(&model.ConvertedArtifact{
		ID:        id,
		ObjectID:  objectID,
		CreatedAt: time.Now().Add(-age),
	})
}

func TestRunOnceReclaimsExpiredItems(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, time.Hour)
	f.addRecording(1, "recordings/old.webm", 13*time.Hour)
	f.addRecording(2, "recordings/fresh.webm", time.Hour)
	f.addConverted(1, "converted/old.wav", 13*time.Hour)
	f.addConverted(2, "converted/fresh.wav", time.Hour)

	res := f.sweeper.RunOnce(context.Background())

	assert.Equal(t, 1, res.ReclaimedRecordings)
	assert.Equal(t, 1, res.ReclaimedConverted)
	assert.Zero(t, res.Retained)
	assert.Zero(t, res.Failures)

	assert.False(t, f.store.has("recordings/old.webm"))
	assert.False(t, f.store.has("converted/old.wav"))
	assert.True(t, f.store.has("recordings/fresh.webm"))
	assert.True(t, f.store.has("converted/fresh.wav"))
	assert.Equal(t, 1, f.recordings.count())
	assert.Equal(t, 1, f.converted.count())
}

func TestRunOnceRetainsReferencedConverted(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, time.Hour)
	f.addConverted(1, "converted/promoted.wav", 13*time.Hour)
	_, err := f.saved.CreateSaved(&model.SavedArtifact{UserID: 1, Name: "keeper", ObjectID: "converted/promoted.wav"})
	require.NoError(t, err)

	res := f.sweeper.RunOnce(context.Background())

	assert.Equal(t, 1, res.Retained)
	assert.Zero(t, res.ReclaimedConverted)
	assert.True(t, f.store.has("converted/promoted.wav"))
	assert.Equal(t, 1, f.converted.count())
}

func TestRunOnceIsolatesPerItemFailures(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, time.Hour)
	f.addConverted(1, "converted/stuck.wav", 13*time.Hour)
	f.addConverted(2, "converted/fine.wav", 13*time.Hour)
	f.store.deleteErr["converted/stuck.wav"] = errors.New("bucket offline")

	res := f.sweeper.RunOnce(context.Background())

	assert.Equal(t, 1, res.Failures)
	assert.Equal(t, 1, res.ReclaimedConverted)
	// The failed item is untouched and still matches the cutoff next run.
	row, err := f.converted.GetConvertedByID(1)
	require.NoError(t, err)
	assert.NotNil(t, row)
}

func TestRunOnceStopsWhenContextCancelled(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, time.Hour)
	f.addRecording(1, "recordings/a.webm", 13*time.Hour)
	f.addConverted(1, "converted/a.wav", 13*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.sweeper.RunOnce(ctx)
	assert.Zero(t, res.ReclaimedRecordings)
	assert.Zero(t, res.ReclaimedConverted)
}

func TestTickSkipsWhenRunInProgress(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, time.Hour)
	f.addConverted(1, "converted/a.wav", 13*time.Hour)

	// Simulate a run that has not finished yet.
	require.True(t, f.sweeper.running.CompareAndSwap(false, true))
	f.sweeper.tick()

	// The overlapping tick did nothing.
	assert.Equal(t, 1, f.converted.count())

	f.sweeper.running.Store(false)
	f.sweeper.tick()
	assert.Equal(t, 0, f.converted.count())
}

func TestStartStopLifecycle(t *testing.T) {
	f := newSweeperFixture(12*time.Hour, 10*time.Millisecond)
	f.addConverted(1, "converted/a.wav", 13*time.Hour)

	f.sweeper.Start()
	require.Eventually(t, func() bool {
		return f.converted.count() == 0
	}, time.Second, 5*time.Millisecond)
	f.sweeper.Stop()
}
