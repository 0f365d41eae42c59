package api

import (
	"net/http"

	"codecollab/internal/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Middleware runs in order: tracing first, then recovery, then CORS
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)

	// Auth endpoints (unauthenticated)
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Register).Methods("POST")
	authRouter.HandleFunc("/login", h.Login).Methods("POST")

	// Health check endpoint
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Everything under /api requires a valid bearer token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(h.verifier))

	// Project endpoints
	api.HandleFunc("/projects", h.CreateProject).Methods("POST")
	api.HandleFunc("/projects", h.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{projectId}", h.GetProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}", h.UpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{projectId}", h.DeleteProject).Methods("DELETE")

	// Collaborator endpoints
	api.HandleFunc("/projects/{projectId}/collaborators", h.AddCollaborator).Methods("POST")
	api.HandleFunc("/projects/{projectId}/collaborators", h.GetCollaborators).Methods("GET")
	api.HandleFunc("/projects/{projectId}/collaborators/{userId}", h.RemoveCollaborator).Methods("DELETE")

	// File endpoints
	api.HandleFunc("/projects/{projectId}/files", h.CreateFile).Methods("POST")
	api.HandleFunc("/projects/{projectId}/files", h.ListFiles).Methods("GET")
	api.HandleFunc("/projects/{projectId}/files/{fileId}", h.GetFile).Methods("GET")
	api.HandleFunc("/projects/{projectId}/files/{fileId}", h.UpdateFile).Methods("PUT")
	api.HandleFunc("/projects/{projectId}/files/{fileId}", h.DeleteFile).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/files/{fileId}/content", h.GetFileContent).Methods("GET")
	api.HandleFunc("/projects/{projectId}/files/{fileId}/content", h.UpdateFileContent).Methods("PUT")
	api.HandleFunc("/projects/{projectId}/files/{fileId}/rename", h.RenameFile).Methods("POST")

	// Activity and version endpoints
	api.HandleFunc("/projects/{projectId}/activity", h.GetActivity).Methods("GET")
	api.HandleFunc("/projects/{projectId}/versions", h.GetVersions).Methods("GET")
	api.HandleFunc("/projects/{projectId}/versions/restore/{versionId}", h.RestoreVersion).Methods("POST")

	// Editor endpoints (same access check as the relay)
	api.HandleFunc("/editor/files/{fileId}", h.GetEditorFileContent).Methods("GET")
	api.HandleFunc("/editor/files/{fileId}", h.SaveEditorFileContent).Methods("PUT")

	// Code execution proxy
	api.HandleFunc("/execute", h.ExecuteCode).Methods("POST")

	// WebSocket route (token is verified during the handshake)
	r.HandleFunc("/ws/editor", h.HandleEditorWebSocket)

	return r
}
