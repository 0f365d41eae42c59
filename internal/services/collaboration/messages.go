package collaboration

import "encoding/json"

// Wire protocol for the editor channel. Every frame is a JSON envelope
// with a named event and an event-specific payload.

const (
	EventJoinFile    = "join-file"
	EventFileContent = "file-content"
	EventUserJoined  = "user-joined"
	EventEdit        = "edit"
	EventCursorMove  = "cursor-move"
	EventError       = "error"
)

// Envelope is the outer frame. Data stays raw until the event type is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinFilePayload is sent by a client to join a file's editing room.
type JoinFilePayload struct {
	FileID string `json:"fileId"`
}

// FileContentPayload is sent to a joining session only, carrying the
// current stored content.
type FileContentPayload struct {
	FileID   string `json:"fileId"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// UserJoinedPayload notifies existing room members of a new participant.
type UserJoinedPayload struct {
	UserID string `json:"userId"`
}

// EditPayload carries a full content replacement. Inbound frames have
// UserID empty; the relay stamps the sender before fanning out.
type EditPayload struct {
	FileID  string `json:"fileId"`
	Content string `json:"content"`
	UserID  string `json:"userId,omitempty"`
}

// CursorPayload carries an opaque cursor position. The relay never
// inspects or stores it.
type CursorPayload struct {
	FileID   string          `json:"fileId"`
	Position json.RawMessage `json:"position"`
	UserID   string          `json:"userId,omitempty"`
}

// ErrorPayload is delivered to the requesting session only.
type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeEvent(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil
	}
	return msg
}
