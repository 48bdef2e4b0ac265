package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/eventops/qr-checkin-api/pkg/response"
)

// APIKeyHeader is the header carrying the shared API key
const APIKeyHeader = "x-api-key"

// APIKey gates a route group behind a shared key. An empty configured
// key disables the gate entirely, which is the on-site kiosk mode.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			response.Unauthorized(c, "invalid or missing api key")
			c.Abort()
			return
		}

		c.Next()
	}
}
