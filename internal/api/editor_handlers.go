package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"codecollab/internal/middleware"
	"codecollab/internal/repository"
	"codecollab/internal/services"

	"github.com/gorilla/mux"
)

// Editor handlers: REST access to file content with the same
// owner-or-collaborator check the WebSocket relay applies at join time.

func (h *Handler) editorAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "File not found")
	case errors.Is(err, services.ErrAccessDenied):
		writeMessage(w, http.StatusForbidden, "Not authorized to access this file")
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

func (h *Handler) GetEditorFileContent(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]
	userID := middleware.UserID(r.Context())

	if _, err := h.access.CanAccessFile(r.Context(), userID, fileID); err != nil {
		h.editorAccessError(w, err)
		return
	}

	file, err := h.files.GetByID(r.Context(), fileID)
	if err != nil {
		h.editorAccessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file": map[string]any{
			"id":       file.ID,
			"name":     file.Name,
			"content":  file.Content,
			"language": file.Language,
		},
	})
}

func (h *Handler) SaveEditorFileContent(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]
	userID := middleware.UserID(r.Context())

	if _, err := h.access.CanAccessFile(r.Context(), userID, fileID); err != nil {
		h.editorAccessError(w, err)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.files.UpdateContent(r.Context(), fileID, body.Content); err != nil {
		h.editorAccessError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "File saved successfully")
}
