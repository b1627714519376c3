package api

import (
	"github.com/example/task-board/domain/user"
	"github.com/example/task-board/modules/broadcast"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// webSocketHandler registers the connection with the hub and keeps reading
// until the client goes away. The board channel is push-only; inbound
// frames are discarded.
func webSocketHandler(hub *broadcast.Hub, logger types.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := &broadcast.Client{
			ID:   uuid.New().String(),
			Conn: c,
		}
		if claims, ok := c.Locals(UserContextKey).(*user.Claims); ok && claims != nil {
			client.UserID = claims.UserID
			client.Username = claims.Username
		}

		hub.Register(client)
		defer hub.Unregister(client)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("WebSocket read error", "clientID", client.ID, "error", err)
				}
				return
			}
		}
	}
}
