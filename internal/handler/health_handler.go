package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/utils"
)

var startTime = time.Now()

// Version is reported by the health endpoint; overridden at build time.
var Version = "1.0.0"

// DBPinger is satisfied by *sqlx.DB and *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by *cache.RedisClient.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db    DBPinger
	cache CachePinger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db DBPinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// GetHealth responds with service, database and Redis status. A database
// outage reports 503 while a Redis outage only degrades the status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("health check: database unreachable")
		utils.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database is unreachable")
		return
	}

	status := "healthy"
	redisStatus := "disabled"
	if h.cache != nil {
		redisStatus = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			redisStatus = "disconnected"
			status = "degraded"
		}
	}

	utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
		"status":   status,
		"version":  Version,
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": "connected",
		"redis":    redisStatus,
	})
}
