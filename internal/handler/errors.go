package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myshagun/backend/internal/middleware"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeAlreadyExists:
		return http.StatusConflict
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message} with the status matching err's code.
// Causes of server-side failures are logged, never returned.
func respondError(c *gin.Context, err error) {
	status := statusFor(apperr.CodeOf(err))
	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}

// currentUserID returns the id set by AuthMiddleware, answering 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
