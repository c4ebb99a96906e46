package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/notify"
)

// Presence marks users online while they hold a live channel.
type Presence interface {
	SetOnline(ctx context.Context, email string) error
	SetOffline(ctx context.Context, email string) error
}

type StreamHandler struct {
	notifier *notify.Notifier
	presence Presence
}

func NewStreamHandler(notifier *notify.Notifier, presence Presence) *StreamHandler {
	return &StreamHandler{notifier: notifier, presence: presence}
}

// Stream godoc
// @Summary Open the user's event stream
// @Description Emits newline-delimited JSON event envelopes ({...fields, "topic": kind})
// @Tags stream
// @Produce json
// @Param email path string true "User email"
// @Success 200
// @Router /stream/{email} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email parameter is required"})
		return
	}

	stream := h.notifier.Register(email)
	defer h.notifier.Deregister(stream)

	ctx := c.Request.Context()
	if err := h.presence.SetOnline(ctx, email); err != nil {
		slog.Warn("set user online", "user", email, "error", err)
	}
	defer func() {
		if err := h.presence.SetOffline(context.Background(), email); err != nil {
			slog.Warn("set user offline", "user", email, "error", err)
		}
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// One envelope per line; the write loop ends when the client goes away
	// or the notifier closes the stream (replaced or dropped as slow).
	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-stream.Events():
			if !ok {
				return false
			}
			w.Write(payload)
			w.Write([]byte("\n"))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
