package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"photocritic/domain/critique"
	"photocritic/domain/services"
	hub "photocritic/infrastructure/websocket"
	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

type clientMessage struct {
	Type string `json:"type"`
}

type WebSocketHandler struct {
	hub      *hub.Hub
	analyses services.AnalysisService
}

func NewWebSocketHandler(h *hub.Hub, analyses services.AnalysisService) *WebSocketHandler {
	return &WebSocketHandler{hub: h, analyses: analyses}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket joins the connection to the room named by ?room=<photoId>
// and keeps it open until the client goes away.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	var userID uuid.UUID
	if user, ok := c.Locals("user").(*utils.UserContext); ok {
		userID = user.ID
	}
	// anonymous viewers get a throwaway id for log correlation
	if userID == uuid.Nil {
		userID = uuid.New()
	}

	room := c.Query("room", "")
	h.hub.Register(c, userID, room)
	defer h.hub.Unregister(c)

	// late joiners learn that an analysis is already running
	if photoID, err := uuid.Parse(room); err == nil && h.analyses != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if h.analyses.IsProcessing(ctx, photoID) {
			h.hub.Send(c, hub.StatusMessage{
				Type:    hub.MessageAnalysisStatus,
				PhotoID: room,
				State:   critique.StateAwaitingModel,
			})
		}
		cancel()
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WebSocketError("read_message", "WebSocket read error", err, map[string]interface{}{"user_id": userID.String()})
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg clientMessage
		if json.Unmarshal(message, &msg) == nil && msg.Type == "ping" {
			h.hub.Send(c, clientMessage{Type: "pong"})
		}
	}
}
