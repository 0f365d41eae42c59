package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"codecollab/internal/auth"
	"codecollab/internal/middleware"
	"codecollab/internal/models"
	"codecollab/internal/repository"
	"codecollab/internal/services/collaboration"

	"github.com/gorilla/mux"
)

// Handler handles HTTP requests. Repositories are held as concrete types,
// services behind the interfaces declared in this package.
type Handler struct {
	users    *repository.UserRepositoryImpl
	projects *repository.ProjectRepositoryImpl
	files    *repository.FileRepositoryImpl
	versions *repository.VersionRepositoryImpl
	activity *repository.ActivityRepositoryImpl

	access   AccessService
	executor CodeExecutor

	wsHandler *collaboration.WebSocketHandler
	verifier  *auth.Verifier
	tokenTTL  time.Duration
}

func NewHandler(
	users *repository.UserRepositoryImpl,
	projects *repository.ProjectRepositoryImpl,
	files *repository.FileRepositoryImpl,
	versions *repository.VersionRepositoryImpl,
	activity *repository.ActivityRepositoryImpl,
	access AccessService,
	executor CodeExecutor,
	wsHandler *collaboration.WebSocketHandler,
	verifier *auth.Verifier,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		users:     users,
		projects:  projects,
		files:     files,
		versions:  versions,
		activity:  activity,
		access:    access,
		executor:  executor,
		wsHandler: wsHandler,
		verifier:  verifier,
		tokenTTL:  tokenTTL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// projectForMember loads the project and verifies the caller is the owner
// or a collaborator. Non-members get the same 404 as a missing project, so
// private project ids don't leak.
func (h *Handler) projectForMember(w http.ResponseWriter, r *http.Request, projectID string) (*models.Project, bool) {
	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil || !project.IsMember(middleware.UserID(r.Context())) {
		writeMessage(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	return project, true
}

// projectForOwner is projectForMember restricted to the owner.
func (h *Handler) projectForOwner(w http.ResponseWriter, r *http.Request, projectID string) (*models.Project, bool) {
	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil || project.OwnerID != middleware.UserID(r.Context()) {
		writeMessage(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	return project, true
}

// logActivity records a feed entry, best effort. A failed audit write never
// fails the request that caused it.
func (h *Handler) logActivity(r *http.Request, projectID string, action models.ActivityAction, details map[string]any) {
	entry := &models.Activity{
		ProjectID: projectID,
		UserID:    middleware.UserID(r.Context()),
		Action:    action,
		Details:   details,
	}
	if err := h.activity.Log(r.Context(), entry); err != nil {
		log.Printf("⚠️  failed to log %s activity: %v", action, err)
	}
}

// Project handlers

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var create models.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if create.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Project name is required")
		return
	}

	project, err := h.projects.Create(r.Context(), middleware.UserID(r.Context()), &create)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logActivity(r, project.ID, models.ActionProjectCreated, map[string]any{
		"projectName": project.Name,
	})

	writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListForUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForMember(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForOwner(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	var update models.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.projects.Update(r.Context(), project.ID, &update)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logActivity(r, project.ID, models.ActionProjectUpdated, map[string]any{
		"projectName": updated.Name,
	})

	writeJSON(w, http.StatusOK, map[string]any{"project": updated})
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForOwner(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), project.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeMessage(w, http.StatusOK, "Project and all associated files deleted successfully")
}

// Collaborator handlers

func (h *Handler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForOwner(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	var invite struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&invite); err != nil || invite.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Collaborator email is required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), invite.Email)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if user.ID == project.OwnerID {
		writeMessage(w, http.StatusBadRequest, "Owner is already a member")
		return
	}

	if err := h.projects.AddCollaborator(r.Context(), project.ID, user.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logActivity(r, project.ID, models.ActionCollaboratorAdded, map[string]any{
		"collaboratorId":    user.ID,
		"collaboratorEmail": user.Email,
	})

	writeMessage(w, http.StatusOK, "Collaborator added successfully")
}

func (h *Handler) GetCollaborators(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForMember(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	collaborators, err := h.projects.ListCollaborators(r.Context(), project.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"collaborators": collaborators})
}

func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForOwner(w, r, vars["projectId"])
	if !ok {
		return
	}

	if err := h.projects.RemoveCollaborator(r.Context(), project.ID, vars["userId"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logActivity(r, project.ID, models.ActionCollaboratorRemoved, map[string]any{
		"collaboratorId": vars["userId"],
	})

	writeMessage(w, http.StatusOK, "Collaborator removed successfully")
}

// File handlers

func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForOwner(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	var create models.FileCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if create.Name == "" || (create.Type != models.FileTypeFile && create.Type != models.FileTypeFolder) {
		writeMessage(w, http.StatusBadRequest, "File name and type are required")
		return
	}

	// A parent, when given, must be an existing folder in this project
	if create.ParentID != nil {
		parent, err := h.files.GetByID(r.Context(), *create.ParentID)
		if err != nil || parent.ProjectID != project.ID || parent.Type != models.FileTypeFolder {
			writeMessage(w, http.StatusBadRequest, "Invalid parent folder")
			return
		}
	}

	file, err := h.files.Create(r.Context(), project.ID, &create)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Initial snapshot for files, best effort like the activity log
	if file.Type == models.FileTypeFile {
		version := &models.Version{
			ProjectID: project.ID,
			FileID:    file.ID,
			Content:   file.Content,
			Changes:   "Initial file creation",
			CreatedBy: middleware.UserID(r.Context()),
		}
		if err := h.versions.Create(r.Context(), version); err != nil {
			log.Printf("⚠️  failed to create initial version: %v", err)
		}
	}

	action := models.ActionFileCreated
	if file.Type == models.FileTypeFolder {
		action = models.ActionFolderCreated
	}
	h.logActivity(r, project.ID, action, map[string]any{
		"fileId":   file.ID,
		"fileName": file.Name,
		"fileType": file.Type,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "File created successfully",
		"file":    file,
	})
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	project, ok := h.projectForMember(w, r, mux.Vars(r)["projectId"])
	if !ok {
		return
	}

	files, err := h.files.ListByProject(r.Context(), project.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// fileInProject loads a file and checks it belongs to the project.
func (h *Handler) fileInProject(w http.ResponseWriter, r *http.Request, projectID, fileID string) (*models.File, bool) {
	file, err := h.files.GetByID(r.Context(), fileID)
	if err != nil || file.ProjectID != projectID {
		writeMessage(w, http.StatusNotFound, "File not found")
		return nil, false
	}
	return file, true
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForMember(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"file": file})
}

func (h *Handler) GetFileContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForMember(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}
	if file.Type != models.FileTypeFile {
		writeMessage(w, http.StatusBadRequest, "Cannot get content of a folder")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"content": file.Content})
}

func (h *Handler) UpdateFileContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForOwner(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}
	if file.Type != models.FileTypeFile {
		writeMessage(w, http.StatusBadRequest, "Cannot edit content of a folder")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Snapshot the current content before overwriting, so each version
	// holds the pre-update state.
	version := &models.Version{
		ProjectID: project.ID,
		FileID:    file.ID,
		Content:   file.Content,
		Changes:   "Auto-saved before update",
		CreatedBy: middleware.UserID(r.Context()),
	}
	if err := h.versions.Create(r.Context(), version); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.files.UpdateContent(r.Context(), file.ID, body.Content); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logActivity(r, project.ID, models.ActionFileUpdated, map[string]any{
		"fileId":        file.ID,
		"fileName":      file.Name,
		"versionNumber": version.VersionNumber,
	})

	writeMessage(w, http.StatusOK, "File content updated successfully")
}

func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForOwner(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeMessage(w, http.StatusBadRequest, "File name is required")
		return
	}

	updated, err := h.files.Update(r.Context(), file.ID, &models.FileUpdate{Name: &body.Name})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"file": updated})
}

func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForOwner(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}

	var update models.FileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.files.Update(r.Context(), file.ID, &update)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"file": updated})
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project, ok := h.projectForOwner(w, r, vars["projectId"])
	if !ok {
		return
	}
	file, ok := h.fileInProject(w, r, project.ID, vars["fileId"])
	if !ok {
		return
	}

	if err := h.files.Delete(r.Context(), file.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	action := models.ActionFileDeleted
	if file.Type == models.FileTypeFolder {
		action = models.ActionFolderDeleted
	}
	h.logActivity(r, project.ID, action, map[string]any{
		"fileId":   file.ID,
		"fileName": file.Name,
	})

	writeMessage(w, http.StatusOK, "File deleted successfully")
}
