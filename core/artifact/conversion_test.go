package artifact_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"Hummify/core/artifact"
	"Hummify/core/synth"
	"Hummify/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotes() []model.Note {
	return []model.Note{
		{Note: "C4", Start: 0, End: 1, Duration: 1, Volume: 90},
		{Note: "E4", Start: 1, End: 2, Duration: 1, Volume: 90},
	}
}

func TestConvertHappyPath(t *testing.T) {
	engine := &fakeEngine{result: &synth.Result{Audio: []byte("RIFFwav"), Tempo: 0, Duration: 2.0}}
	store := newFakeStore()
	repo := newFakeConvertedRepo()
	svc := artifact.NewConversionService(engine, store, repo, nil, 120)

	var phases []string
	converted, err := svc.Convert(context.Background(), validNotes(), "flute", func(p string) {
		phases = append(phases, p)
	})
	require.NoError(t, err)
	require.NotNil(t, converted)

	assert.NotZero(t, converted.ID)
	assert.Equal(t, "flute", converted.Instrument)
	assert.Equal(t, 120, converted.Tempo) // engine reported no tempo
	assert.Equal(t, 2.0, converted.Duration)
	assert.True(t, store.has(converted.ObjectID))
	assert.Equal(t, store.URL(converted.ObjectID), converted.URL)
	assert.Equal(t, []string{
		artifact.PhaseValidating,
		artifact.PhaseSynthesizing,
		artifact.PhaseUploading,
		artifact.PhaseSaving,
	}, phases)

	stored, err := repo.GetConvertedByID(converted.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, converted.ObjectID, stored.ObjectID)
}

func TestConvertRejectsInvalidInput(t *testing.T) {
	engine := &fakeEngine{result: &synth.Result{Audio: []byte("wav")}}
	store := newFakeStore()
	repo := newFakeConvertedRepo()
	svc := artifact.NewConversionService(engine, store, repo, nil, 120)

	// Missing instrument.
	_, err := svc.Convert(context.Background(), validNotes(), "  ", nil)
	assert.Equal(t, artifact.KindInvalidInput, artifact.KindOf(err))

	// Malformed notes.
	_, err = svc.Convert(context.Background(), []model.Note{{Note: "H4", Start: 0, End: 1, Duration: 1}}, "flute", nil)
	assert.Equal(t, artifact.KindInvalidInput, artifact.KindOf(err))

	// Rejected input never reaches the engine or the store.
	assert.Zero(t, engine.calls)
	assert.Zero(t, store.uploads)
}

func TestConvertEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("synth crashed")}
	store := newFakeStore()
	svc := artifact.NewConversionService(engine, store, newFakeConvertedRepo(), nil, 120)

	_, err := svc.Convert(context.Background(), validNotes(), "flute", nil)
	assert.Equal(t, artifact.KindUpstreamFailure, artifact.KindOf(err))
	assert.Zero(t, store.uploads)
}

func TestConvertEngineTimeout(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("synthesis exceeded deadline: %w", synth.ErrTimeout)}
	svc := artifact.NewConversionService(engine, newFakeStore(), newFakeConvertedRepo(), nil, 120)

	_, err := svc.Convert(context.Background(), validNotes(), "flute", nil)
	assert.Equal(t, artifact.KindUpstreamFailure, artifact.KindOf(err))
	assert.ErrorIs(t, err, synth.ErrTimeout)
}

func TestConvertUploadFailure(t *testing.T) {
	engine := &fakeEngine{result: &synth.Result{Audio: []byte("wav"), Tempo: 96, Duration: 1}}
	store := newFakeStore()
	store.uploadErr = errors.New("bucket offline")
	repo := newFakeConvertedRepo()
	svc := artifact.NewConversionService(engine, store, repo, nil, 120)

	_, err := svc.Convert(context.Background(), validNotes(), "flute", nil)
	assert.Equal(t, artifact.KindStorageFailure, artifact.KindOf(err))
	assert.Empty(t, repo.rows)
}

func TestConvertPersistFailureDeletesUpload(t *testing.T) {
	engine := &fakeEngine{result: &synth.Result{Audio: []byte("wav"), Tempo: 96, Duration: 1}}
	store := newFakeStore()
	repo := newFakeConvertedRepo()
	repo.createErr = errors.New("insert failed")
	svc := artifact.NewConversionService(engine, store, repo, nil, 120)

	_, err := svc.Convert(context.Background(), validNotes(), "flute", nil)
	assert.Equal(t, artifact.KindPersistenceFailure, artifact.KindOf(err))

	// The uploaded object was compensated away.
	require.Len(t, store.deleted, 1)
	assert.False(t, store.has(store.deleted[0]))
}

func TestConvertKeepsEngineTempo(t *testing.T) {
	engine := &fakeEngine{result: &synth.Result{Audio: []byte("wav"), Tempo: 96, Duration: 1}}
	svc := artifact.NewConversionService(engine, newFakeStore(), newFakeConvertedRepo(), nil, 120)

	converted, err := svc.Convert(context.Background(), validNotes(), "flute", nil)
	require.NoError(t, err)
	assert.Equal(t, 96, converted.Tempo)
}

func TestGetConvertedNotFound(t *testing.T) {
	svc := artifact.NewConversionService(&fakeEngine{}, newFakeStore(), newFakeConvertedRepo(), nil, 120)

	_, err := svc.GetConverted(context.Background(), 42)
	assert.Equal(t, artifact.KindNotFound, artifact.KindOf(err))
}
