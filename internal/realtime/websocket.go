// internal/realtime/websocket.go
package realtime

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// ServeNotifications streams hub notifications to an authenticated
// connection. The user id comes from the "userId" local set by the JWT
// middleware before the upgrade.
func ServeNotifications(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		rawID, _ := c.Locals("userId").(string)
		userID, err := uuid.Parse(rawID)
		if err != nil {
			log.Printf("[WS] invalid user id %q", rawID)
			c.Close()
			return
		}

		client := NewClient(userID)
		hub.RegisterClient(client)
		defer hub.UnregisterClient(client)

		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Printf("[WS] write to %s: %v", userID, err)
					return
				}
			}
		}()

		// the client only sends pongs; reading keeps the close handshake working
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
