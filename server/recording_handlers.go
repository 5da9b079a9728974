package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"Hummify/logger"
	"Hummify/model"
)

// maxRecordingSize bounds an uploaded hum (32 MB).
const maxRecordingSize = 32 << 20

// UploadRecordingHandler accepts a multipart hum recording, stores it in
// the blob store and records its metadata. Recordings are transient: the
// reclamation sweeper removes them after the retention window.
func (h *APIHandler) UploadRecordingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxRecordingSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxRecordingSize+1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read audio file")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "audio file is empty")
		return
	}
	if len(data) > maxRecordingSize {
		respondError(w, http.StatusRequestEntityTooLarge, "audio file too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".webm"
	}

	ref, err := h.store.Upload(r.Context(), data, "recordings", ext)
	if err != nil {
		logger.Error("Failed to upload recording",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "failed to store recording")
		return
	}

	rec := &model.UploadedRecording{
		UserID:           userID,
		ObjectID:         ref.ObjectID,
		URL:              ref.URL,
		OriginalFilename: header.Filename,
		CreatedAt:        time.Now(),
	}
	if _, err := h.recordingRepo.CreateRecording(rec); err != nil {
		logger.Error("Failed to persist recording, deleting uploaded object",
			logger.String("objectId", ref.ObjectID),
			logger.ErrorField(err))
		if delErr := h.store.Delete(r.Context(), ref.ObjectID); delErr != nil {
			logger.Error("Failed to delete orphaned recording object",
				logger.String("objectId", ref.ObjectID),
				logger.ErrorField(delErr))
		}
		respondError(w, http.StatusInternalServerError, "failed to persist recording")
		return
	}

	logger.Info("Recording uploaded",
		logger.Int64("recordingId", rec.ID),
		logger.Int64("userId", userID),
		logger.String("objectId", ref.ObjectID))

	respondJSON(w, http.StatusCreated, rec)
}

// ListRecordingsHandler returns the authenticated user's recordings.
func (h *APIHandler) ListRecordingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	recordings, err := h.recordingRepo.GetRecordingsByUserID(userID)
	if err != nil {
		logger.Error("Failed to list recordings",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list recordings")
		return
	}
	respondJSON(w, http.StatusOK, recordings)
}
