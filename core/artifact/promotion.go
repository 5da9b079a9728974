package artifact

import (
	"context"
	"strings"
	"time"

	"Hummify/logger"
	"Hummify/model"
	"Hummify/repository"
	"Hummify/storage"
)

// maxSavedNameLength bounds the human-readable name of a saved artifact.
const maxSavedNameLength = 100

// PromotionService turns a transient converted artifact into a permanently
// retained saved artifact and manages a user's saved library.
type PromotionService struct {
	converted repository.ConvertedRepository
	saved     repository.SavedRepository
	store     storage.ObjectStore
}

// NewPromotionService wires a promotion service.
func NewPromotionService(
	converted repository.ConvertedRepository,
	saved repository.SavedRepository,
	store storage.ObjectStore,
) *PromotionService {
	return &PromotionService{
		converted: converted,
		saved:     saved,
		store:     store,
	}
}

// Promote copies a converted artifact's fields and blob reference into a
// new saved artifact owned by ownerID. The source artifact is not touched;
// promoting the same artifact twice legally yields two saved artifacts
// sharing one object. If the artifact was already reclaimed the caller
// gets KindNotFound and must re-convert.
func (s *PromotionService) Promote(ctx context.Context, artifactID, ownerID int64, name string) (*model.SavedArtifact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindInvalidInput, "name is required", nil)
	}
	if len(name) > maxSavedNameLength {
		return nil, newError(KindInvalidInput, "name exceeds 100 characters", nil)
	}

	source, err := s.lookupConverted(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	saved := &model.SavedArtifact{
		UserID:     ownerID,
		Name:       name,
		Notes:      source.Notes,
		Instrument: source.Instrument,
		ObjectID:   source.ObjectID,
		URL:        source.URL,
		Tempo:      source.Tempo,
		Duration:   source.Duration,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.saved.CreateSaved(saved); err != nil {
		return nil, newError(KindPersistenceFailure, "failed to persist saved artifact", err)
	}

	logger.Info("Artifact promoted",
		logger.Int64("savedId", saved.ID),
		logger.Int64("sourceArtifactId", artifactID),
		logger.Int64("userId", ownerID),
		logger.String("objectId", saved.ObjectID))

	return saved, nil
}

// GetSaved retrieves one saved artifact for its owner.
func (s *PromotionService) GetSaved(ctx context.Context, id, ownerID int64) (*model.SavedArtifact, error) {
	saved, err := s.saved.GetSavedByIDAndUser(id, ownerID)
	if err != nil {
		return nil, newError(KindPersistenceFailure, "failed to load saved artifact", err)
	}
	if saved == nil {
		return nil, newError(KindNotFound, "saved artifact not found", nil)
	}
	return saved, nil
}

// ListSaved retrieves all saved artifacts owned by a user.
func (s *PromotionService) ListSaved(ctx context.Context, ownerID int64) ([]*model.SavedArtifact, error) {
	saved, err := s.saved.GetSavedByUserID(ownerID)
	if err != nil {
		return nil, newError(KindPersistenceFailure, "failed to list saved artifacts", err)
	}
	return saved, nil
}

// DeleteSaved removes a saved artifact after an ownership check. The blob
// delete is best-effort: the database is the source of truth for whether
// an artifact is still wanted, storage cleanup is advisory and will not
// block the record delete.
func (s *PromotionService) DeleteSaved(ctx context.Context, id, ownerID int64) error {
	saved, err := s.saved.GetSavedByID(id)
	if err != nil {
		return newError(KindPersistenceFailure, "failed to load saved artifact", err)
	}
	if saved == nil {
		return newError(KindNotFound, "saved artifact not found", nil)
	}
	if saved.UserID != ownerID {
		return newError(KindUnauthorized, "saved artifact belongs to another user", nil)
	}

	if err := s.store.Delete(ctx, saved.ObjectID); err != nil {
		logger.Warn("Failed to delete blob for saved artifact, continuing with record delete",
			logger.Int64("savedId", id),
			logger.String("objectId", saved.ObjectID),
			logger.ErrorField(err))
	}

	if err := s.saved.DeleteSaved(id); err != nil {
		return newError(KindPersistenceFailure, "failed to delete saved artifact", err)
	}

	logger.Info("Saved artifact deleted",
		logger.Int64("savedId", id),
		logger.Int64("userId", ownerID))
	return nil
}

// lookupConverted always reads the repository, never the metadata cache:
// a cache entry can outlive the row by one sweep, and promotion must see
// the point-in-time truth about whether the artifact still exists.
func (s *PromotionService) lookupConverted(ctx context.Context, artifactID int64) (*model.ConvertedArtifact, error) {
	converted, err := s.converted.GetConvertedByID(artifactID)
	if err != nil {
		return nil, newError(KindPersistenceFailure, "failed to load converted artifact", err)
	}
	if converted == nil {
		return nil, newError(KindNotFound, "converted artifact not found", nil)
	}
	return converted, nil
}
