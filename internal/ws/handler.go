package ws

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/auth"
	"messenger-service/internal/observability"
)

// ParticipantChecker reports conversation membership. services.ConversationService implements it.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
}

// Handler upgrades websocket connections for conversation and user rooms.
type Handler struct {
	hub           *Hub
	conversations ParticipantChecker
	validator     auth.TokenValidator
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, conversations ParticipantChecker, validator auth.TokenValidator) *Handler {
	return &Handler{hub: hub, conversations: conversations, validator: validator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleConversation serves GET /ws/conversations/:conversation_id.
func (h *Handler) HandleConversation(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("conversation_id"), 10, 64)
	if err != nil || conversationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	h.serve(c, kindConversation, conversationID, userID, span.SpanContext().TraceID().String(),
		func(conn *websocket.Conn, info ConnInfo) { h.hub.AddConversationClient(conversationID, conn, info) },
		func(conn *websocket.Conn) { h.hub.RemoveConversationClient(conversationID, conn) },
	)
}

// HandleUser serves GET /ws/users/me.
func (h *Handler) HandleUser(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	h.serve(c, kindUser, userID, userID, span.SpanContext().TraceID().String(),
		func(conn *websocket.Conn, info ConnInfo) { h.hub.AddUserClient(userID, conn, info) },
		func(conn *websocket.Conn) { h.hub.RemoveUserClient(userID, conn) },
	)
}

// authenticate accepts the Authorization header or a ?token= query parameter,
// since browsers cannot set headers on websocket upgrades.
func (h *Handler) authenticate(c *gin.Context) (int64, error) {
	token := ""
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		token = parts[1]
	}
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return 0, auth.ErrInvalidToken
	}
	return h.validator.ValidateToken(c.Request.Context(), token)
}

func (h *Handler) serve(c *gin.Context, kind string, resourceID, userID int64, traceID string, register func(*websocket.Conn, ConnInfo), unregister func(*websocket.Conn)) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	register(conn, info)

	// The handshake span ends when this handler returns; lifecycle events
	// after that carry ids through info instead of the request context.
	bg := context.Background()
	observability.IncWSActive(kind)
	publishWSEvent(bg, kind, resourceID, "ws_connect", info, "")

	// Keep connection alive and clean on close
	go func() {
		var closeReason string
		defer func() {
			unregister(conn)
			observability.DecWSActive(kind)
			publishWSEvent(bg, kind, resourceID, "ws_disconnect", info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishWSEvent(bg, kind, resourceID, "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}
