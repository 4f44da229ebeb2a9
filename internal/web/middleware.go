package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/STTM-NSU/advisor-workspace/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const _unmatchedRoute = "unmatched"

// NewEngine returns a gin engine with recovery, access logging and request metrics.
func NewEngine(service string, logger logger.Logger) *gin.Engine {
	RegisterValidations()

	e := gin.New()
	// forwarding headers are client controlled until a proxy is configured
	_ = e.SetTrustedProxies(nil)
	e.Use(Recovery(logger), AccessLog(logger), Metrics(service))
	e.NoRoute(func(c *gin.Context) {
		AbortWithError(c, logger, apperror.NotFound("route", c.Request.URL.Path))
	})
	e.GET("/metrics", gin.WrapH(metrics.Handler()))
	return e
}

func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return _unmatchedRoute
}

func AccessLog(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := logger.With(
			"method", c.Request.Method,
			"route", route(c),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
		if id := c.GetHeader(reqctx.HeaderRequestID); id != "" {
			l = l.With("request_id", id)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			l.Errorf("%s %s", c.Request.Method, c.Request.URL.Path)
		case status >= http.StatusBadRequest:
			l.Warnf("%s %s", c.Request.Method, c.Request.URL.Path)
		default:
			l.Infof("%s %s", c.Request.Method, c.Request.URL.Path)
		}
	}
}

func Metrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := metrics.NewTimer(metrics.HTTPRequestDuration.WithLabelValues(service, route(c)))
		c.Next()
		timer.ObserveDuration()
		metrics.HTTPRequestsTotal.WithLabelValues(service, c.Request.Method, route(c), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Recovery answers panics with the 500 envelope.
func Recovery(logger logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		status := http.StatusInternalServerError
		c.AbortWithStatusJSON(status, NewErrorResponse(status, "Internal Server Error", "An unexpected error occurred"))
	})
}
