package api

import (
	"net/http"
	"strconv"

	"codecollab/internal/middleware"
	"codecollab/internal/models"

	"github.com/gorilla/mux"
)

// Activity and version handlers.

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForMember(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	activities, err := h.activity.ListByProject(r.Context(), project.ID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

func (h *Handler) GetVersions(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForMember(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	versions, err := h.versions.ListByProject(r.Context(), project.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// RestoreVersion writes a snapshot's content back to its file. The content
// being replaced is saved as a fresh version first, so history stays
// append-only and the restore itself can be undone.
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForMember(w, r, vars["projectId"])
	if !ok {
		return
	}

	version, err := h.versions.GetByID(r.Context(), vars["versionId"])
	if err != nil || version.ProjectID != project.ID {
		writeMessage(w, http.StatusNotFound, "Version not found")
		return
	}

	file, err := h.files.GetByID(r.Context(), version.FileID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "File not found")
		return
	}

	snapshot := &models.Version{
		ProjectID: project.ID,
		FileID:    file.ID,
		Content:   file.Content,
		Changes:   "Auto-saved before restore",
		CreatedBy: middleware.UserID(r.Context()),
	}
	if err := h.versions.Create(r.Context(), snapshot); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.files.UpdateContent(r.Context(), file.ID, version.Content); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	file.Content = version.Content

	h.logActivity(r, project.ID, models.ActionVersionRestored, map[string]any{
		"fileId":          file.ID,
		"fileName":        file.Name,
		"restoredVersion": version.VersionNumber,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Version restored successfully",
		"file":    file,
		"version": version.VersionNumber,
	})
}
