package handler

import (
	"time"

	"auctionhouse-backend/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WSHandler struct {
	hub *service.FeedHub
}

func NewWSHandler(hub *service.FeedHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// GET /ws?listing_id=...
// The feed is read-only public data (the same thing the status endpoint
// serves), so no token is required to watch.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	listingID := c.Query("listing_id")
	if listingID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "listing_id is required"})
	}

	c.Locals("listing_id", listingID)
	return websocket.New(h.handleConnection)(c)
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	listingID, _ := c.Locals("listing_id").(string)

	client := &service.FeedClient{
		Conn:      c,
		ListingID: listingID,
		Send:      make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Writer goroutine. Exits when Unregister closes Send.
	go func() {
		for msg := range client.Send {
			_ = c.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Reader loop: watchers send nothing meaningful, but reading is what
	// detects the close frame. Returning runs the deferred Unregister,
	// which closes Send and lets the writer exit.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
