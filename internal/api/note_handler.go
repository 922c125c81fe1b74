package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
)

// NoteHandler handles session note requests.
type NoteHandler struct {
	notes  service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(notes service.NoteService, logger *slog.Logger) *NoteHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NoteHandler")
	}
	return &NoteHandler{
		notes:  notes,
		logger: logger.With(slog.String("component", "note_handler")),
	}
}

// List handles GET /notes with an optional session_id filter.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	sessionID, err := queryInt64(r, "session_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	list, err := h.notes.List(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notes")
		return
	}
	if list == nil {
		list = []*domain.Note{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	var req CreateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	n, err := h.notes.Create(r.Context(), userID, service.NoteInput{
		SessionID: req.SessionID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, n)
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.notes.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get note")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, n)
}

// Update handles PUT /notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	n, err := h.notes.Update(r.Context(), userID, id, service.NoteInput{Title: req.Title, Content: req.Content})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update note")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, n)
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete note")
		return
	}
	shared.RespondNoContent(w)
}

// History handles GET /notes/{id}/history, newest edit first.
func (h *NoteHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	history, err := h.notes.History(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get note history")
		return
	}
	if history == nil {
		history = []domain.NoteHistory{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, history)
}
