package lfdapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/reqctx"
	"github.com/gin-gonic/gin"
)

// RequireIdentity rejects internal calls missing an identity header and otherwise
// attaches the caller's RequestContext to the request context.
func RequireIdentity(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := make(map[string]string, len(reqctx.RequiredHeaders))
		for _, h := range reqctx.RequiredHeaders {
			v := strings.TrimSpace(c.GetHeader(h))
			if v == "" {
				metrics.UnauthorizedTotal.WithLabelValues(h).Inc()
				logger.Warnf("rejected %s %s from %s: missing %s", c.Request.Method, c.Request.URL.Path, c.RemoteIP(), h)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "Missing or empty required header: " + h,
				})
				return
			}
			values[h] = v
		}

		rc := reqctx.RequestContext{
			UserID:    values[reqctx.HeaderUserID],
			AdvisorID: values[reqctx.HeaderAdvisorID],
			RequestID: values[reqctx.HeaderRequestID],
			Timestamp: time.Now(),
			ClientIP:  c.RemoteIP(),
		}
		if ts := strings.TrimSpace(c.GetHeader(reqctx.HeaderTimestamp)); ts != "" {
			if parsed, err := model.ParseDateTime(ts); err == nil {
				rc.Timestamp = parsed.Time
			} else {
				logger.Debugf("ignoring unparsable %s %q", reqctx.HeaderTimestamp, ts)
			}
		}
		c.Request = c.Request.WithContext(reqctx.WithContext(c.Request.Context(), rc))

		metrics.InternalRequestsInFlight.Inc()
		defer metrics.InternalRequestsInFlight.Dec()

		c.Next()
	}
}
