package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	env     string
	started time.Time
}

func NewHealthHandler(env string, started time.Time) *HealthHandler {
	return &HealthHandler{env: env, started: started}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	ok(c, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.started).Seconds(),
		"environment": h.env,
	})
}
