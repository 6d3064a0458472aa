package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

const slowRequestThreshold = 2 * time.Second

// RequestLogger logs every request at debug level; server errors and slow
// requests are raised to warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", cost),
		}
		if userID := c.GetString(ContextUserID); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		if status >= 500 || cost > slowRequestThreshold {
			fields = append(fields,
				zap.String("user_agent", c.Request.UserAgent()),
				zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
			)
			logger.Log.Warn("Slow request or server error", fields...)
			return
		}
		logger.Log.Debug("Request handled", fields...)
	}
}
