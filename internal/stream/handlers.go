package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live event feed for a recording session.
// The first frame on every connection is a subscribed ack so clients
// know events from that point on are complete.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Use("/live/:recordingID", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})

	r.Get("/live/:recordingID", websocket.New(func(c *websocket.Conn) {
		recordingID := c.Params("recordingID")

		client := hub.Register(recordingID)
		defer hub.Unregister(client)

		// ack after Register: once the client reads this frame, no
		// later broadcast can be missed
		ack := []byte(`{"event":"subscribed","data":{"recording_id":"` + recordingID + `"}}`)
		if err := c.WriteMessage(websocket.TextMessage, ack); err != nil {
			return
		}

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
