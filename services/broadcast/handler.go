package broadcast

import (
	"log"

	"github.com/gin-gonic/gin"
)

// HandleConnection upgrades an HTTP request to a websocket subscription on
// one game's event stream. The stream is server-to-client; inbound frames are
// drained and discarded until the peer disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	gameID := c.Param("id")
	if gameID == "" {
		c.JSON(400, gin.H{"error": "game id is required"})
		return
	}

	address := c.GetString("address")
	if address == "" {
		address = c.Query("address")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS-ERROR] upgrade failed for game %s: %v", gameID, err)
		return
	}

	client := &Client{conn: conn, address: address, gameID: gameID}
	h.Register(client)

	go func() {
		defer h.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
