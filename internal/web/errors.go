package web

import (
	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/gin-gonic/gin"
)

// NewErrorResponse builds the error envelope for status.
func NewErrorResponse(status int, title, message string) model.ErrorResponse {
	return model.ErrorResponse{
		Timestamp: model.Now(),
		Status:    status,
		Error:     title,
		Message:   message,
	}
}

// AbortWithError renders err as the error envelope and stops the handler chain.
// Internal and database failures are logged with details and answered generically.
func AbortWithError(c *gin.Context, logger logger.Logger, err error) {
	appErr := apperror.From(err)
	status := appErr.HTTPStatus()

	switch appErr.Kind {
	case apperror.KindInternal, apperror.KindDatabase:
		logger.Errorf("%s: %s %s failed", err, c.Request.Method, c.FullPath())
	case apperror.KindUpstreamUnavailable, apperror.KindUnavailable:
		logger.Warnf("%s: %s %s failed", err, c.Request.Method, c.FullPath())
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, NewErrorResponse(status, appErr.Title(), appErr.PublicMessage()))
}
