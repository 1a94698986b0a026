package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Scrimzay/npcbattle/internal/world"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type InspectAction struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type InspectResponse struct {
	Action string        `json:"action"`
	Empty  bool          `json:"empty"`
	NPC    *world.Record `json:"npc,omitempty"`
}

// HandleWebsocket registers the client with the hub and answers its inspect
// requests until the connection drops.
func HandleWebsocket(hub *Hub, reg *world.Registry, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("ws")

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("Upgrade failed", zap.Error(err))
			return
		}

		if !hub.Register(conn) {
			conn.Close()
			return
		}

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				hub.Unregister(conn)
				return
			}

			if msgType != websocket.TextMessage {
				continue
			}

			var base struct {
				Action string `json:"action"`
			}
			if err := json.Unmarshal(msg, &base); err != nil {
				log.Debug("JSON parse error", zap.Error(err))
				continue
			}

			switch base.Action {
			case "inspect":
				var inspect InspectAction
				if err := json.Unmarshal(msg, &inspect); err != nil {
					continue
				}

				resp := InspectResponse{Action: "inspect_response", Empty: true}
				if rec, ok := recordAt(reg, inspect.X, inspect.Y); ok {
					resp.Empty = false
					resp.NPC = &rec
				}

				if err := hub.writeDirect(conn, resp); err != nil {
					log.Debug("Inspect send failed", zap.Error(err))
					hub.Unregister(conn)
					return
				}
			}
		}
	}
}

// recordAt finds the alive entity drawn at (x, y); the last one wins, as on
// the rendered map.
func recordAt(reg *world.Registry, x, y int) (world.Record, bool) {
	var found world.Record
	ok := false

	for _, rec := range reg.Records() {
		if rec.Alive && rec.X == x && rec.Y == y {
			found = rec
			ok = true
		}
	}

	return found, ok
}
