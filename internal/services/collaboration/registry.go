package collaboration

import (
	"log"
	"sync"
)

// Registry tracks which sessions are joined to which file rooms. A room is
// pure routing state: it owns no content and exists only while it has at
// least one member.
//
// All mutation goes through Join/Leave/LeaveAll, and Broadcast snapshots
// the member set under the same lock, so membership changes are atomic
// with respect to fan-out iteration.
type Registry struct {
	mu sync.RWMutex

	// fileID -> sessionID -> session
	rooms map[string]map[string]*Session

	// sessionID -> set of joined fileIDs, so LeaveAll is proportional to
	// the rooms the session joined rather than all rooms.
	joined map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]*Session),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds a session to a file's room, creating the room on first join.
// Re-joining a room the session is already in is a no-op.
func (r *Registry) Join(fileID string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[fileID]
	if !ok {
		room = make(map[string]*Session)
		r.rooms[fileID] = room
	}
	if _, member := room[session.ID]; member {
		return
	}
	room[session.ID] = session

	if r.joined[session.ID] == nil {
		r.joined[session.ID] = make(map[string]struct{})
	}
	r.joined[session.ID][fileID] = struct{}{}

	log.Printf("  session %s joined file %s (%d users)", session.ID, fileID, len(room))
}

// Leave removes a session from a room. Empty rooms are deleted in the same
// critical section so the registry never leaks empty entries.
func (r *Registry) Leave(fileID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(fileID, sessionID)
}

// LeaveAll removes the session from every room it joined. Called
// synchronously on disconnect so a dead session can never be broadcast to.
func (r *Registry) LeaveAll(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for fileID := range r.joined[sessionID] {
		r.leaveLocked(fileID, sessionID)
	}
}

func (r *Registry) leaveLocked(fileID, sessionID string) {
	room, ok := r.rooms[fileID]
	if !ok {
		return
	}
	if _, member := room[sessionID]; !member {
		return
	}

	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, fileID)
	}

	if joined, ok := r.joined[sessionID]; ok {
		delete(joined, fileID)
		if len(joined) == 0 {
			delete(r.joined, sessionID)
		}
	}

	log.Printf("  session %s left file %s (%d users remaining)", sessionID, fileID, len(room))
}

// Broadcast delivers a message to every room member except the sender.
// Broadcasting to a room with no other members (or no room at all) is a
// no-op. The member set is snapshotted under the read lock; the actual
// sends are non-blocking channel writes and happen outside it.
func (r *Registry) Broadcast(fileID, senderSessionID string, message []byte) {
	r.mu.RLock()
	room := r.rooms[fileID]
	recipients := make([]*Session, 0, len(room))
	for id, session := range room {
		if id == senderSessionID {
			continue
		}
		recipients = append(recipients, session)
	}
	r.mu.RUnlock()

	for _, session := range recipients {
		if !session.enqueue(message) {
			// Buffer full or session closing - drop rather than block the
			// sender's event handling.
			log.Printf("⚠️  session %s send buffer full, dropping message", session.ID)
		}
	}
}

// MemberCount returns the number of sessions in a file's room.
func (r *Registry) MemberCount(fileID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[fileID])
}

// IsMember reports whether the session is currently in the file's room.
func (r *Registry) IsMember(fileID, sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[fileID][sessionID]
	return ok
}

// RoomsOf returns the file ids the session is currently joined to.
func (r *Registry) RoomsOf(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.joined[sessionID]))
	for fileID := range r.joined[sessionID] {
		rooms = append(rooms, fileID)
	}
	return rooms
}
