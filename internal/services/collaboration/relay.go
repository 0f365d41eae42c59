package collaboration

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"codecollab/internal/middleware"
	"codecollab/internal/repository"
	"codecollab/internal/services"
)

// Relay implements the live collaboration protocol: sessions join per-file
// rooms, edits are persisted and fanned out to the other members, cursor
// positions are relayed without persistence.
//
// Conflict policy is last-write-wins: concurrent edits to the same file are
// not merged, the write that reaches storage last fully replaces the
// content. This is a known v1 limit; there is no operational-transform or
// CRDT reconciliation here.
//
// Access is checked at join time only. Edit and cursor frames for a file
// are relayed without re-authorization, so a collaborator removed
// mid-session keeps access until they reconnect.
type Relay struct {
	registry *Registry
	access   AccessChecker
	files    FileStore

	// Bound on suspending calls (access check, content load/save). A call
	// that exceeds it fails toward the requesting session only.
	timeout time.Duration
}

func NewRelay(registry *Registry, access AccessChecker, files FileStore, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Relay{
		registry: registry,
		access:   access,
		files:    files,
		timeout:  timeout,
	}
}

// Registry exposes the room registry, mainly for presence inspection.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// dispatch routes one inbound envelope. Unknown events are ignored, and a
// handler failure never affects any session other than the sender.
func (r *Relay) dispatch(ctx context.Context, s *Session, envelope *Envelope) {
	switch envelope.Event {
	case EventJoinFile:
		var payload JoinFilePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.FileID == "" {
			s.sendEvent(EventError, ErrorPayload{Message: "Malformed message"})
			return
		}
		r.HandleJoin(ctx, s, payload.FileID)

	case EventEdit:
		var payload EditPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.FileID == "" {
			s.sendEvent(EventError, ErrorPayload{Message: "Malformed message"})
			return
		}
		r.HandleEdit(ctx, s, payload.FileID, payload.Content)

	case EventCursorMove:
		var payload CursorPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.FileID == "" {
			s.sendEvent(EventError, ErrorPayload{Message: "Malformed message"})
			return
		}
		r.HandleCursor(s, payload.FileID, payload.Position)

	default:
		log.Printf("  session %s sent unknown event %q", s.ID, envelope.Event)
	}
}

// HandleJoin verifies access, subscribes the session to the file's room,
// sends the current content to the joiner only, and notifies the room's
// existing members. On any failure the requester gets an error event and
// room membership is left untouched.
func (r *Relay) HandleJoin(ctx context.Context, s *Session, fileID string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.access.CanAccessFile(ctx, s.UserID, fileID); err != nil {
		middleware.AddSpanError(ctx, err)
		s.sendEvent(EventError, ErrorPayload{Message: joinErrorMessage(err)})
		return
	}

	file, err := r.files.GetByID(ctx, fileID)
	if err != nil {
		middleware.AddSpanError(ctx, err)
		s.sendEvent(EventError, ErrorPayload{Message: joinErrorMessage(err)})
		return
	}

	r.registry.Join(fileID, s)

	// Current content goes to the joiner only, never to the room.
	s.sendEvent(EventFileContent, FileContentPayload{
		FileID:   fileID,
		Content:  file.Content,
		Language: file.Language,
	})

	// Empty-set safe: the first joiner notifies nobody.
	r.registry.Broadcast(fileID, s.ID, encodeEvent(EventUserJoined, UserJoinedPayload{
		UserID: s.UserID,
	}))

	log.Printf("  user %s joined file %s", s.UserID, fileID)
}

// HandleEdit persists the full replacement content, then broadcasts it to
// the other room members. Persistence failure is reported to the sender
// only; peers are not notified and keep their local copy, which may now
// diverge from storage until the next successful write.
func (r *Relay) HandleEdit(ctx context.Context, s *Session, fileID, content string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.files.UpdateContent(ctx, fileID, content); err != nil {
		middleware.AddSpanError(ctx, err)
		s.sendEvent(EventError, ErrorPayload{Message: "Failed to save changes"})
		return
	}

	r.registry.Broadcast(fileID, s.ID, encodeEvent(EventEdit, EditPayload{
		FileID:  fileID,
		Content: content,
		UserID:  s.UserID,
	}))
}

// HandleCursor relays an ephemeral position to the other room members.
// No persistence, no access check, no ordering relative to edits.
func (r *Relay) HandleCursor(s *Session, fileID string, position json.RawMessage) {
	r.registry.Broadcast(fileID, s.ID, encodeEvent(EventCursorMove, CursorPayload{
		FileID:   fileID,
		Position: position,
		UserID:   s.UserID,
	}))
}

// HandleDisconnect removes the session from every room it joined. Rooms
// are cleaned up synchronously so later broadcasts can never target a dead
// session. No user-left notification is sent; membership just shrinks.
func (r *Relay) HandleDisconnect(s *Session) {
	r.registry.LeaveAll(s.ID)
	s.close()

	log.Printf("  session %s disconnected (user %s)", s.ID, s.UserID)
}

// joinErrorMessage maps join failures onto the user-visible messages.
// File-missing and access-denied stay distinguishable in the message text
// even though both travel as plain error events.
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "File not found"
	case errors.Is(err, services.ErrAccessDenied):
		return "Not authorized to access this file"
	default:
		return "Failed to join file"
	}
}
