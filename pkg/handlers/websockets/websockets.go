package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/habit-pools/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// userParam carries the user id on the connect request. Live updates are
// addressed per user, so a connection without one is refused.
const userParam = "user_id"

// Handler serves the per-user live update channel, either behind API Gateway
// or directly from the local server.
type Handler struct {
	connManager websockets.ConnectionManager
	hub         *websockets.Hub
}

// NewHandler creates a Handler for API Gateway connections.
func NewHandler(connManager websockets.ConnectionManager) *Handler {
	return &Handler{connManager: connManager}
}

// NewLocalHandler creates a Handler that serves connections itself and
// registers them with hub.
func NewLocalHandler(hub *websockets.Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleConnect records a new connection against its user.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connID := request.RequestContext.ConnectionID
	userID := request.QueryStringParameters[userParam]
	if userID == "" {
		slog.Warn("Connection refused without a user", "connectionId", connID)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}
	slog.Info("Client connected", "connectionId", connID, "user_id", userID)

	if err := h.connManager.AddConnection(ctx, connID, userID); err != nil {
		slog.Error("Failed to record connection", "connectionId", connID, "user_id", userID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect forgets a connection.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Info("Client disconnected", "connectionId", request.RequestContext.ConnectionID)

	if err := h.connManager.RemoveConnection(ctx, request.RequestContext.ConnectionID); err != nil {
		slog.Error("Failed to forget connection", "connectionId", request.RequestContext.ConnectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault logs client messages. The channel is server-to-client only.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	slog.Debug("Ignoring client message", "connectionId", request.RequestContext.ConnectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP handles WebSocket requests for the local server.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.Error(w, "websockets are served by API Gateway", http.StatusServiceUnavailable)
		return
	}
	userID := r.URL.Query().Get(userParam)
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	h.hub.Register(connectionID, userID, conn)
	slog.Info("Client connected locally", "connectionId", connectionID, "user_id", userID)
	defer func() {
		h.hub.Unregister(connectionID)
		slog.Info("Client disconnected locally", "connectionId", connectionID)
	}()

	// Reading is the only way to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("unexpected close error", "error", err)
			}
			return
		}
	}
}
