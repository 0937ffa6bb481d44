package handler

import (
	"net/http"
	"strings"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; origin pinning is left to the
	// reverse proxy in deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS upgrades the connection and streams change events. Clients narrow the
// feed with ?kinds=transaction,inventory — empty means everything.
func WS(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("ws: upgrade failed")
			return
		}

		var kinds []string
		if raw := c.Query("kinds"); raw != "" {
			kinds = strings.Split(raw, ",")
		}

		client := notify.NewClient(conn, kinds)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump(hub)
	}
}
