package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Hummify/core/artifact"
	"Hummify/logger"
	"Hummify/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// ConvertRequest is the note sequence plus instrument to synthesize.
type ConvertRequest struct {
	Notes      []model.Note `json:"notes"`
	Instrument string       `json:"instrument"`
}

// ConvertHandler synthesizes an edited note sequence into a converted
// artifact.
func (h *APIHandler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	converted, err := h.conversion.Convert(r.Context(), req.Notes, req.Instrument, nil)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, converted)
}

// GetConvertedHandler returns one converted artifact by id.
func (h *APIHandler) GetConvertedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid artifact id")
		return
	}

	converted, err := h.conversion.GetConverted(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, converted)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsEvent is a message pushed over the conversion status socket.
type wsEvent struct {
	Type  string      `json:"type"` // "status", "done" or "error"
	Phase string      `json:"phase,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ConvertWSHandler runs a conversion over a websocket, pushing phase
// events while the synthesis is in flight. The client sends one
// ConvertRequest and receives status events followed by a final done or
// error message.
func (h *APIHandler) ConvertWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade conversion websocket", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	var req ConvertRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(wsEvent{Type: "error", Error: "invalid request"})
		return
	}

	progress := func(phase string) {
		if err := conn.WriteJSON(wsEvent{Type: "status", Phase: phase}); err != nil {
			logger.Debug("Failed to push conversion status", logger.ErrorField(err))
		}
	}

	converted, err := h.conversion.Convert(r.Context(), req.Notes, req.Instrument, progress)
	if err != nil {
		kind := artifact.KindOf(err)
		conn.WriteJSON(wsEvent{Type: "error", Phase: string(kind), Error: err.Error()})
		return
	}
	conn.WriteJSON(wsEvent{Type: "done", Data: converted})
}
