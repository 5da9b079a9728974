package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// PromoteRequest asks for a converted artifact to be kept permanently.
type PromoteRequest struct {
	ArtifactID int64  `json:"artifactId"`
	Name       string `json:"name"`
}

// PromoteHandler creates a saved artifact from a converted one.
func (h *APIHandler) PromoteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req PromoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.promotion.Promote(r.Context(), req.ArtifactID, userID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// ListSavedHandler returns all saved artifacts for the authenticated user.
func (h *APIHandler) ListSavedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	saved, err := h.promotion.ListSaved(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// GetSavedHandler returns one saved artifact owned by the user.
func (h *APIHandler) GetSavedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid saved artifact id")
		return
	}

	saved, err := h.promotion.GetSaved(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// DeleteSavedHandler deletes a saved artifact (and best-effort its blob)
// after an ownership check.
func (h *APIHandler) DeleteSavedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid saved artifact id")
		return
	}

	if err := h.promotion.DeleteSaved(r.Context(), id, userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "artifact deleted"})
}
