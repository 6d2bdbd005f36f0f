package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/middleware"
	"github.com/ventech/ventech_api/internal/sse"
	"github.com/ventech/ventech_api/internal/utils"
)

// SSEHandler streams storefront changes to admin dashboards.
type SSEHandler struct {
	hub       *sse.Hub
	tokens    middleware.TokenValidator
	keepAlive time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, tokens middleware.TokenValidator) *SSEHandler {
	return &SSEHandler{hub: hub, tokens: tokens, keepAlive: 30 * time.Second}
}

// Stream handles GET /v1/admin/events?token=<jwt>. Browsers' EventSource
// cannot send an Authorization header, so the token rides in the query.
// Each change is written with its sequence number as the event id.
func (h *SSEHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token query parameter")
		return
	}
	claims, err := h.tokens.Validate(token)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	client, err := h.hub.Register(claims.UserID)
	if errors.Is(err, sse.ErrTooManyStreams) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_STREAMS", "Too many open event streams for this account")
		return
	}
	defer h.hub.Unregister(client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Render(-1, ginsse.Event{Event: "connected", Data: gin.H{"clientId": client.ID}})
	c.Writer.Flush()
	log.Info().Str("client_id", client.ID).Str("role", claims.Role).Msg("admin event stream started")

	ping := time.NewTicker(h.keepAlive)
	defer ping.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case msg, ok := <-client.Events:
			if !ok {
				return false
			}
			c.Render(-1, ginsse.Event{
				Id:    strconv.FormatUint(msg.Seq, 10),
				Event: "change",
				Data:  string(msg.Data),
			})
			return true
		case t := <-ping.C:
			c.Render(-1, ginsse.Event{Event: "ping", Data: t.UTC().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
