package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/emberwell/pulsecheck-backend/internal/clients/redis"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	db     *gorm.DB
	events redisclient.Client // nil when Redis is not configured
}

func NewHealthHandler(db *gorm.DB, events redisclient.Client) *HealthHandler {
	return &HealthHandler{db: db, events: events}
}

// GET /healthz
//
// Postgres decides liveness; Redis is optional capacity and only reported.
func (h *HealthHandler) Check(c *gin.Context) {
	components := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.pingPostgres(c.Request.Context()); err != nil {
			components["postgres"] = err.Error()
			healthy = false
		} else {
			components["postgres"] = "ok"
		}
	}

	if h.events == nil {
		components["redis"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		if err := h.events.Ping(ctx); err != nil {
			components["redis"] = err.Error()
		} else {
			components["redis"] = "ok"
		}
		cancel()
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "components": components})
}

func (h *HealthHandler) pingPostgres(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
