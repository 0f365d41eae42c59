package api

import (
	"net/http"
)

// WebSocket endpoints

// HandleEditorWebSocket upgrades a client onto the live collaboration relay
func (h *Handler) HandleEditorWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleEditorConnection(w, r)
}
