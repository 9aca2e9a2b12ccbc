package middlewares

import (
	"github.com/gin-gonic/gin"

	logger "github.com/sanctyr/site/middleware/log"
)

// TraceMiddleware attaches a trace ID to every request context and echoes
// it in the response so a failing call can be found in the logs.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-Id")
		if traceID == "" {
			traceID = logger.NewTraceID()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header("X-Trace-Id", traceID)
		c.Next()
	}
}
