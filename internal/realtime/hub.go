// AngelaMos | 2026
// hub.go

package realtime

import (
	"sync"
)

// Hub tracks websocket sessions and topic subscriptions on this
// instance. One active socket per user; a reconnect replaces the old
// session. Cross-instance fan-out happens in the redis bridge, which
// delivers into every instance's local hub.
type Hub struct {
	mu            sync.RWMutex
	sessions      map[string]*Connection            // sessionID -> connection
	userSessions  map[string]string                 // userID -> sessionID
	topics        map[string]map[string]*Connection // topic -> sessionID -> connection
	sessionTopics map[string]map[string]struct{}    // sessionID -> set of topics
}

func NewHub() *Hub {
	return &Hub{
		sessions:      make(map[string]*Connection),
		userSessions:  make(map[string]string),
		topics:        make(map[string]map[string]*Connection),
		sessionTopics: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for the given user. An existing session
// for the same user is closed after the swap.
func (h *Hub) Attach(conn *Connection) {
	var previous *Connection

	h.mu.Lock()
	if existingID, ok := h.userSessions[conn.UserID]; ok {
		if existing := h.sessions[existingID]; existing != nil {
			previous = existing
			h.detachLocked(existingID)
		}
	}

	h.sessions[conn.ID] = conn
	h.userSessions[conn.UserID] = conn.ID
	h.sessionTopics[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Subscribe adds the connection to a topic.
func (h *Hub) Subscribe(topic string, conn *Connection) {
	h.mu.Lock()
	if _, ok := h.sessions[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}

	subscribers := h.topics[topic]
	if subscribers == nil {
		subscribers = make(map[string]*Connection)
		h.topics[topic] = subscribers
	}
	subscribers[conn.ID] = conn

	memberships := h.sessionTopics[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.sessionTopics[conn.ID] = memberships
	}
	memberships[topic] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unsubscribe(topic string, conn *Connection) {
	h.mu.Lock()
	h.unsubscribeLocked(topic, conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to every subscriber of the topic and reports
// how many sends were accepted.
func (h *Hub) Broadcast(topic string, payload []byte) int {
	h.mu.RLock()
	subscribers := h.topics[topic]
	if len(subscribers) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range subscribers {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// NotifyUser delivers payload to the user's current connection, if any.
func (h *Hub) NotifyUser(userID string, payload []byte) bool {
	h.mu.RLock()
	sessionID, ok := h.userSessions[userID]
	if !ok {
		h.mu.RUnlock()
		return false
	}
	conn := h.sessions[sessionID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// Stats reports current hub occupancy.
func (h *Hub) Stats() (connections, topics int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions), len(h.topics)
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.userSessions = make(map[string]string)
	h.topics = make(map[string]map[string]*Connection)
	h.sessionTopics = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "server shutting down")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if current, ok := h.userSessions[conn.UserID]; ok && current == sessionID {
		delete(h.userSessions, conn.UserID)
	}

	for topic := range h.sessionTopics[sessionID] {
		h.unsubscribeLocked(topic, sessionID)
	}
	delete(h.sessionTopics, sessionID)
}

func (h *Hub) unsubscribeLocked(topic, sessionID string) {
	if sessionID == "" {
		return
	}
	subscribers := h.topics[topic]
	if subscribers == nil {
		return
	}
	delete(subscribers, sessionID)
	if len(subscribers) == 0 {
		delete(h.topics, topic)
	}
	if memberships, ok := h.sessionTopics[sessionID]; ok {
		delete(memberships, topic)
		if len(memberships) == 0 {
			delete(h.sessionTopics, sessionID)
		}
	}
}
