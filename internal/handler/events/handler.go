package events

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/connectday/booking-api/internal/handler"
	"github.com/connectday/booking-api/internal/hub"
	"github.com/connectday/booking-api/internal/model"
)

// Handler serves the server-sent-events stream. Every open connection gets
// every update; clients filter on the event's date field themselves.
type Handler struct {
	hub               *hub.Hub
	heartbeatInterval time.Duration
	logger            zerolog.Logger
}

func NewHandler(h *hub.Hub, heartbeatInterval time.Duration, logger zerolog.Logger) *Handler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	return &Handler{
		hub:               h,
		heartbeatInterval: heartbeatInterval,
		logger:            logger.With().Str("component", "events").Logger(),
	}
}

func (h *Handler) Stream(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date parameter is required"))
		return
	}
	if _, err := model.ParseDate(dateStr); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			// Client went away; the deferred unsubscribe releases the channel.
			return

		case payload, ok := <-sub.C:
			if !ok {
				// Hub dropped us (failed write or shutdown).
				return
			}
			if !h.write(c, payload) {
				return
			}

		case <-ticker.C:
			if !h.write(c, h.hub.HeartbeatMessage()) {
				return
			}
		}
	}
}

// write encodes one message onto the stream. A failed write means the
// transport is gone, so the caller ends the connection, which triggers the
// same cleanup path as a client abort.
func (h *Handler) write(c *gin.Context, payload []byte) bool {
	if payload == nil {
		return true
	}
	if err := sse.Encode(c.Writer, sse.Event{Data: string(payload)}); err != nil {
		h.logger.Debug().Err(err).Msg("stream write failed")
		return false
	}
	c.Writer.Flush()
	return true
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/events", h.Stream)
}
