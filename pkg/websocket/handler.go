package websocket

import (
	"net/http"

	"swyft/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly in production
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(log *logger.Logger) *Handler {
	hub := NewHub(log)
	go hub.Run()

	return &Handler{
		hub: hub,
	}
}

// HandleWebSocket upgrades the connection and hands it to the hub. Clients
// declare their own room membership via joinRoom frames.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
