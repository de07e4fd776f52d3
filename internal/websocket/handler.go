package websocket

import (
	"net/http"

	"FriendCall/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws?token=...  (seat token middleware 注入 player / match)
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetString("player")
		if playerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing seat"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Log.Warn("ws upgrade failed", "player", playerID, "err", err)
			return
		}

		client := &Client{
			PlayerID: playerID,
			MatchID:  c.GetString("match"),
			Conn:     conn,
			Send:     make(chan OutgoingMessage, sendBuffer),
			Hub:      hub,
		}

		hub.join(client)

		go client.writePump()
		go client.readPump()
	}
}
