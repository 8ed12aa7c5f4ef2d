package middleware

import (
	"eon-notify/data"
	"eon-notify/logger"
	"eon-notify/utils"

	"github.com/gin-gonic/gin"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try to get correlation ID from header
		correlationID := c.Request.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = utils.GenerateUUID()
			logger.Log.Debug(logger.LogPayload{
				Component:     "Correlation Middleware",
				Operation:     "CorrelationIDMiddleware",
				Message:       "X-Correlation-ID is missing, generated new correlation ID",
				CorrelationId: correlationID,
			})
		}

		// Store in gin.Context
		c.Set(data.CORRELATION_ID, correlationID)

		// Continue request
		c.Next()
	}
}
