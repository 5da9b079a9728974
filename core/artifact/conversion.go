package artifact

import (
	"context"
	"errors"
	"strings"
	"time"

	"Hummify/cache"
	"Hummify/core/notes"
	"Hummify/core/synth"
	"Hummify/logger"
	"Hummify/model"
	"Hummify/repository"
	"Hummify/storage"
)

// Conversion phases reported to the optional progress callback.
const (
	PhaseValidating   = "validating"
	PhaseSynthesizing = "synthesizing"
	PhaseUploading    = "uploading"
	PhaseSaving       = "saving"
)

// ProgressFunc receives phase updates during a conversion. May be nil.
type ProgressFunc func(phase string)

// ConversionService orchestrates note sanitization, synthesis, blob upload
// and metadata persistence into one converted artifact.
type ConversionService struct {
	engine       synth.Engine
	store        storage.ObjectStore
	repo         repository.ConvertedRepository
	cache        *cache.ArtifactCache
	defaultTempo int
}

// NewConversionService wires a conversion service. cache may be nil.
func NewConversionService(
	engine synth.Engine,
	store storage.ObjectStore,
	repo repository.ConvertedRepository,
	artifactCache *cache.ArtifactCache,
	defaultTempo int,
) *ConversionService {
	if defaultTempo <= 0 {
		defaultTempo = 120
	}
	return &ConversionService{
		engine:       engine,
		store:        store,
		repo:         repo,
		cache:        artifactCache,
		defaultTempo: defaultTempo,
	}
}

// Convert renders an edited note sequence into audio and persists the
// result. The blob upload completes and is referenced in the database
// before the synthesis buffer is discarded; if the database write fails
// after a successful upload, the uploaded object is deleted best-effort so
// no orphan remains.
func (s *ConversionService) Convert(ctx context.Context, rawNotes []model.Note, instrument string, progress ProgressFunc) (*model.ConvertedArtifact, error) {
	report := func(phase string) {
		if progress != nil {
			progress(phase)
		}
	}

	report(PhaseValidating)
	instrument = strings.TrimSpace(instrument)
	if instrument == "" {
		return nil, newError(KindInvalidInput, "instrument is required", nil)
	}
	sanitized, err := notes.Sanitize(rawNotes)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid notes", err)
	}

	report(PhaseSynthesizing)
	result, err := s.engine.Synthesize(ctx, instrument, sanitized)
	if err != nil {
		if errors.Is(err, synth.ErrTimeout) {
			return nil, newError(KindUpstreamFailure, "synthesis timed out", err)
		}
		return nil, newError(KindUpstreamFailure, "synthesis failed", err)
	}

	report(PhaseUploading)
	ref, err := s.store.Upload(ctx, result.Audio, "converted", ".wav")
	if err != nil {
		return nil, newError(KindStorageFailure, "failed to upload synthesized audio", err)
	}

	tempo := result.Tempo
	if tempo <= 0 {
		tempo = s.defaultTempo
	}

	converted := &model.ConvertedArtifact{
		Notes:      sanitized,
		Instrument: instrument,
		ObjectID:   ref.ObjectID,
		URL:        ref.URL,
		Tempo:      tempo,
		Duration:   result.Duration,
		CreatedAt:  time.Now(),
	}

	report(PhaseSaving)
	if _, err := s.repo.CreateConverted(converted); err != nil {
		// Compensate: the object is uploaded but will never be referenced,
		// so remove it rather than leave an orphan. Best effort only; the
		// original persistence error is what the caller sees.
		s.deleteOrphan(ref.ObjectID)
		return nil, newError(KindPersistenceFailure, "failed to persist converted artifact", err)
	}

	if cacheErr := s.cache.Set(ctx, converted); cacheErr != nil {
		logger.Warn("Failed to cache converted artifact",
			logger.Int64("artifactId", converted.ID),
			logger.ErrorField(cacheErr))
	}

	logger.Info("Conversion completed",
		logger.Int64("artifactId", converted.ID),
		logger.String("instrument", instrument),
		logger.Int("notes", len(sanitized)),
		logger.String("objectId", ref.ObjectID))

	return converted, nil
}

// GetConverted looks up a converted artifact, serving from the cache when
// possible.
func (s *ConversionService) GetConverted(ctx context.Context, id int64) (*model.ConvertedArtifact, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}
	converted, err := s.repo.GetConvertedByID(id)
	if err != nil {
		return nil, newError(KindPersistenceFailure, "failed to load converted artifact", err)
	}
	if converted == nil {
		return nil, newError(KindNotFound, "converted artifact not found", nil)
	}
	return converted, nil
}

func (s *ConversionService) deleteOrphan(objectID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.store.Delete(ctx, objectID); err != nil {
		logger.Error("Failed to delete orphaned object after persistence failure",
			logger.String("objectId", objectID),
			logger.ErrorField(err))
		return
	}
	logger.Warn("Deleted orphaned object after persistence failure",
		logger.String("objectId", objectID))
}
