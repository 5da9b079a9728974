package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"Hummify/config"
	"Hummify/core/artifact"
	"Hummify/logger"
	"Hummify/repository"
	"Hummify/storage"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	userRepo      repository.UserRepository
	recordingRepo repository.RecordingRepository
	conversion    *artifact.ConversionService
	promotion     *artifact.PromotionService
	store         storage.ObjectStore
	cfg           *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	userRepo repository.UserRepository,
	recordingRepo repository.RecordingRepository,
	conversion *artifact.ConversionService,
	promotion *artifact.PromotionService,
	store storage.ObjectStore,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:      userRepo,
		recordingRepo: recordingRepo,
		conversion:    conversion,
		promotion:     promotion,
		store:         store,
		cfg:           cfg,
	}
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	}); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondServiceError maps an artifact service error to an HTTP status.
func respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *artifact.Error
	if !errors.As(err, &svcErr) {
		logger.Error("Unclassified service error", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case artifact.KindInvalidInput:
		status = http.StatusBadRequest
	case artifact.KindNotFound:
		status = http.StatusNotFound
	case artifact.KindUnauthorized:
		status = http.StatusForbidden
	case artifact.KindUpstreamFailure, artifact.KindStorageFailure:
		status = http.StatusBadGateway
	case artifact.KindPersistenceFailure:
		status = http.StatusInternalServerError
	}
	respondError(w, status, svcErr.Message)
}

type contextKey string

const (
	ctxKeyUserID   contextKey = "userID"
	ctxKeyUsername contextKey = "username"
)

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
