package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

const (
	kindConversation = "conversation"
	kindUser         = "user"
)

const writeTimeout = 10 * time.Second

type roomKey struct {
	kind string
	id   int64
}

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn    *websocket.Conn
	info    ConnInfo
	writeMu sync.Mutex
}

func (cl *client) write(payload []byte) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cl.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains active websocket rooms: one per conversation and one per user.
type Hub struct {
	rooms map[roomKey]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[roomKey]map[*websocket.Conn]*client)}
}

// AddConversationClient registers a connection to a conversation room.
func (h *Hub) AddConversationClient(conversationID int64, conn *websocket.Conn, info ConnInfo) {
	h.add(roomKey{kindConversation, conversationID}, conn, info)
}

// RemoveConversationClient removes a conversation connection.
func (h *Hub) RemoveConversationClient(conversationID int64, conn *websocket.Conn) {
	h.remove(roomKey{kindConversation, conversationID}, conn)
}

// AddUserClient registers a connection to the user's personal room.
func (h *Hub) AddUserClient(userID int64, conn *websocket.Conn, info ConnInfo) {
	h.add(roomKey{kindUser, userID}, conn, info)
}

// RemoveUserClient removes a user connection.
func (h *Hub) RemoveUserClient(userID int64, conn *websocket.Conn) {
	h.remove(roomKey{kindUser, userID}, conn)
}

// BroadcastConversation sends event to every client watching the conversation.
func (h *Hub) BroadcastConversation(conversationID int64, event models.ConversationEvent) {
	h.broadcast(roomKey{kindConversation, conversationID}, event)
}

// NotifyUser sends event to every connection the user has open.
func (h *Hub) NotifyUser(userID int64, event models.UserEvent) {
	h.broadcast(roomKey{kindUser, userID}, event)
}

// RoomSize reports how many connections are registered in a room.
func (h *Hub) RoomSize(kind string, id int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey{kind, id}])
}

func (h *Hub) add(key roomKey, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[key]; !ok {
		h.rooms[key] = make(map[*websocket.Conn]*client)
	}
	h.rooms[key][conn] = &client{conn: conn, info: info}
}

func (h *Hub) remove(key roomKey, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, key)
		}
	}
}

func (h *Hub) snapshot(key roomKey) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*client, 0, len(h.rooms[key]))
	for _, cl := range h.rooms[key] {
		clients = append(clients, cl)
	}
	return clients
}

func (h *Hub) broadcast(key roomKey, event any) {
	clients := h.snapshot(key)
	if len(clients) == 0 {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("websocket event encode failed", "kind", key.kind, "resource_id", key.id, "error", err)
		return
	}
	for _, cl := range clients {
		if err := cl.write(payload); err != nil {
			slog.Warn("websocket write error", "kind", key.kind, "resource_id", key.id, "conn_id", cl.info.ConnID, "error", err)
			cl.conn.Close()
			h.remove(key, cl.conn)
			publishWSEvent(context.Background(), key.kind, key.id, "ws_error", cl.info, err.Error())
		}
	}
}

// publishWSEvent emits a ws_events.<kind>s lifecycle event and counts it.
func publishWSEvent(ctx context.Context, kind string, resourceID int64, event string, info ConnInfo, reason string) {
	duration := int64(0)
	if event != "ws_connect" {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
	observability.IncWSEvent(kind, event)
}

func wsRoutingKey(kind string) string {
	if kind == kindUser {
		return "ws_events.users"
	}
	return "ws_events.conversations"
}
