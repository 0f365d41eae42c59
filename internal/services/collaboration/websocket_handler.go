package collaboration

import (
	"context"
	"log"
	"net/http"

	"codecollab/internal/auth"
	"codecollab/internal/middleware"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: validate origin against the configured frontend URL
		return true
	},
}

// WebSocketHandler upgrades editor connections and hands them to the relay.
// Authentication happens once here, at connection time; a bad token means
// the connection is refused outright, not degraded.
type WebSocketHandler struct {
	relay    *Relay
	verifier *auth.Verifier
}

func NewWebSocketHandler(relay *Relay, verifier *auth.Verifier) *WebSocketHandler {
	return &WebSocketHandler{relay: relay, verifier: verifier}
}

// HandleEditorConnection authenticates the client, upgrades to WebSocket,
// and starts the session's read/write pumps. The token is taken from the
// "token" query parameter or the Authorization header.
func (h *WebSocketHandler) HandleEditorConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		http.Error(w, "Authentication error", http.StatusUnauthorized)
		return
	}

	userID, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "Authentication error", http.StatusUnauthorized)
		return
	}

	ctx, span := middleware.StartSpan(ctx, "WebSocket.Connect",
		attribute.String("user.id", userID),
	)
	defer span.End()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		middleware.AddSpanError(ctx, err)
		return
	}

	session := NewSessionConn(userID, conn)

	// Separate read and write goroutines prevent a deadlock between the
	// two directions of the connection. The read pump outlives this
	// handler, so it must not inherit the request context's cancellation.
	go session.WritePump()
	go session.ReadPump(context.WithoutCancel(ctx), h.relay)

	log.Printf("✓ WebSocket connection established (session: %s, user: %s)", session.ID, userID)
}
