package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/ws"
)

type WSHandler struct {
	hub      *ws.Hub
	presence Presence
}

func NewWSHandler(hub *ws.Hub, presence Presence) *WSHandler {
	return &WSHandler{hub: hub, presence: presence}
}

// HandleWebSocket godoc
// @Summary Open a bidirectional chat connection
// @Description Inbound frames are chat messages to friends; outbound frames are event envelopes
// @Tags websocket
// @Param email query string true "User email"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]interface{}
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email parameter is required"})
		return
	}

	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user", email, "error", err)
		return
	}

	if err := h.presence.SetOnline(c.Request.Context(), email); err != nil {
		slog.Warn("set user online", "user", email, "error", err)
	}

	client := ws.NewClient(h.hub, conn, email)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump()
		if err := h.presence.SetOffline(context.Background(), email); err != nil {
			slog.Warn("set user offline", "user", email, "error", err)
		}
	}()
}
