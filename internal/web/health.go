package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"

	_healthTimeout = 5 * time.Second
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

// Health reports UP when every check passes and 503 with the failing component otherwise.
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), _healthTimeout)
		defer cancel()

		body := gin.H{"status": StatusUp}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				body[name] = gin.H{"status": StatusDown, "error": err.Error()}
				body["status"] = StatusDown
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = gin.H{"status": StatusUp}
		}
		c.JSON(status, body)
	}
}
