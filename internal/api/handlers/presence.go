package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/pkg/response"
)

// PresenceReader answers who currently holds a live channel.
type PresenceReader interface {
	GetOnlineUsers(ctx context.Context) ([]string, error)
	IsOnline(ctx context.Context, email string) (bool, error)
}

type PresenceHandler struct {
	presence PresenceReader
}

func NewPresenceHandler(presence PresenceReader) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// Online godoc
// @Summary List users currently online
// @Tags presence
// @Produce json
// @Success 200 {array} string
// @Router /presence/online [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	users, err := h.presence.GetOnlineUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": users})
}

// Status godoc
// @Summary Check whether one user is online
// @Tags presence
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} map[string]interface{}
// @Router /presence/{email} [get]
func (h *PresenceHandler) Status(c *gin.Context) {
	online, err := h.presence.IsOnline(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": c.Param("email"), "online": online})
}
