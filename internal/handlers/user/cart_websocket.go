package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dermodazzle_back_end/internal/utils"
)

const cartPingInterval = 30 * time.Second

func (h *CartHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(h.origins) == 0 || h.origins[origin]
		},
	}
}

// GET /api/cart/ws : pousse le panier à chaque modification, sur tous les onglets.
func (h *CartHandler) WebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if h.watcher == nil {
		utils.BadRequest(c, "Synchronisation temps réel indisponible")
		return
	}

	ctx := c.Request.Context()
	events, stop, err := h.watcher.Watch(ctx, userID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	defer stop()

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// la lecture détecte la fermeture côté navigateur
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}
	if !h.push(conn, c, userID) {
		return
	}

	ticker := time.NewTicker(cartPingInterval)
	defer ticker.Stop()
	for {
		select {
		case _, ok := <-events:
			if !ok || !h.push(conn, c, userID) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *CartHandler) push(conn *websocket.Conn, c *gin.Context, userID string) bool {
	snapshot, err := h.snapshot(c.Request.Context(), userID)
	if err != nil {
		log.Printf("⚠️ Panier illisible pour %s: %v", userID, err)
		return true
	}
	snapshot["type"] = "cart_updated"
	if err := conn.WriteJSON(snapshot); err != nil {
		log.Printf("❌ Erreur envoi WebSocket: %v", err)
		return false
	}
	return true
}
