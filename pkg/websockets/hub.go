package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub tracks local websocket connections and publishes to them directly. The
// local server uses it in place of API Gateway.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*websocket.Conn
	owner  map[string]string
	// writes to one gorilla connection must not run concurrently
	writeMu map[string]*sync.Mutex
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		byUser:  make(map[string]map[string]*websocket.Conn),
		owner:   make(map[string]string),
		writeMu: make(map[string]*sync.Mutex),
	}
}

// Register attaches conn to userID under connectionID.
func (h *Hub) Register(connectionID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[string]*websocket.Conn)
	}
	h.byUser[userID][connectionID] = conn
	h.owner[connectionID] = userID
	h.writeMu[connectionID] = &sync.Mutex{}
}

// Unregister forgets connectionID.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.owner[connectionID]
	if !ok {
		return
	}
	delete(h.owner, connectionID)
	delete(h.writeMu, connectionID)
	delete(h.byUser[userID], connectionID)
	if len(h.byUser[userID]) == 0 {
		delete(h.byUser, userID)
	}
}

// Connections returns the number of connections registered for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// Publish writes message to every local connection of userID.
func (h *Hub) Publish(ctx context.Context, userID string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	type target struct {
		id   string
		conn *websocket.Conn
		mu   *sync.Mutex
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.byUser[userID]))
	for id, conn := range h.byUser[userID] {
		targets = append(targets, target{id: id, conn: conn, mu: h.writeMu[id]})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		t.mu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := t.conn.WriteMessage(websocket.TextMessage, payload)
		t.mu.Unlock()
		if err != nil {
			slog.Error("failed to write to local connection", "connectionId", t.id, "error", err)
			h.Unregister(t.id)
		}
	}
	return nil
}

var _ Publisher = (*Hub)(nil)
