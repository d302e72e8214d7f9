package ws

import "sync"

// Conn is the slice of *websocket.Conn the hub needs.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub tracks at most one live connection per (session, user). All state is
// owned here; nothing package-level.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[string]Conn // session id -> user id -> conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[string]Conn)}
}

// Register stores the connection and returns the one it replaced, if any,
// so the caller can close it.
func (h *Hub) Register(sessionID, userID string, c Conn) Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	users, ok := h.conns[sessionID]
	if !ok {
		users = make(map[string]Conn)
		h.conns[sessionID] = users
	}
	old := users[userID]
	users[userID] = c
	return old
}

// Unregister drops the connection, but only if it is still the current one;
// a reconnect that already replaced it stays registered.
func (h *Hub) Unregister(sessionID, userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if users, ok := h.conns[sessionID]; ok && users[userID] == c {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.conns, sessionID)
		}
	}
}

// SendToOther delivers the payload to every party except the sender. A
// failed write drops that connection.
func (h *Hub) SendToOther(sessionID, senderID string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	users := h.conns[sessionID]
	for userID, c := range users {
		if userID == senderID {
			continue
		}
		if err := c.WriteJSON(v); err != nil {
			delete(users, userID)
		}
	}
}

// Broadcast delivers the payload to every live connection of the session.
func (h *Hub) Broadcast(sessionID string, v any) {
	h.SendToOther(sessionID, "", v)
}

// CloseSession closes and forgets every connection of the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.conns[sessionID] {
		_ = c.Close()
	}
	delete(h.conns, sessionID)
}
