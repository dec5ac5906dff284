package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bookswap/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // single-user session; no cross-origin policy to enforce
	},
}

// WSHandler streams snapshot events. Each client first receives the current
// snapshots so it can render without waiting for a change.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		log := logger.Component("ws")

		if err := hub.AddWS(ws); err != nil {
			log.Warn().Err(err).Str("remote", ws.RemoteAddr().String()).Msg("greeting failed")
			_ = ws.Close()
			return
		}
		log.Info().Str("remote", ws.RemoteAddr().String()).Msg("client connected")

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Info().Msg("client disconnected")
	}
}
