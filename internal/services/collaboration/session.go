package collaboration

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"codecollab/internal/middleware"
	"codecollab/internal/models"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Session is one authenticated editor connection. A session may be joined
// to any number of file rooms at once; the relay routes its frames.
type Session struct {
	*models.Session
	Conn *websocket.Conn

	// Send is the buffered outbound queue drained by WritePump.
	Send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewSessionConn(userID string, conn *websocket.Conn) *Session {
	return &Session{
		Session: models.NewSession(userID),
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// enqueue queues an outbound message without blocking. Returns false when
// the session is closing or its buffer is full.
func (s *Session) enqueue(message []byte) bool {
	if message == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.Send <- message:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// sendEvent marshals and queues a single event for this session only.
func (s *Session) sendEvent(event string, payload any) {
	s.enqueue(encodeEvent(event, payload))
}

// close marks the session dead and wakes WritePump. Safe to call more
// than once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// ReadPump reads frames from the WebSocket and dispatches them to the
// relay. It owns the connection's read side; each session gets its own
// goroutine. Cleanup is unconditional: the relay's disconnect handling
// runs even when the peer vanishes without a close frame.
func (s *Session) ReadPump(ctx context.Context, relay *Relay) {
	defer func() {
		relay.HandleDisconnect(s)
		s.close()
		s.Conn.Close()
	}()

	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		s.LastActiveAt = time.Now()
		return nil
	})

	for {
		_, message, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.LastActiveAt = time.Now()

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			s.sendEvent(EventError, ErrorPayload{Message: "Malformed message"})
			continue
		}

		msgCtx, span := middleware.StartSpan(ctx, "Relay.ProcessMessage",
			attribute.String("session.id", s.ID),
			attribute.String("event", envelope.Event),
		)
		relay.dispatch(msgCtx, s, &envelope)
		span.End()
	}
}

// WritePump drains the Send queue onto the WebSocket and keeps the
// connection alive with pings. The separate goroutine prevents a slow
// reader from blocking broadcast fan-out.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case <-s.done:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := s.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
