package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eternalmoments/backend/internal/modules/serializer"
)

// CronAuth guards scheduler-only endpoints with a shared secret carried
// in the X-Cron-Secret header. These endpoints are hit by the cron
// runner, not by users, so there is no bearer token to verify.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				serializer.Err(http.StatusServiceUnavailable, "cron secret not configured", nil))
			return
		}

		got := c.GetHeader("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		c.Next()
	}
}
