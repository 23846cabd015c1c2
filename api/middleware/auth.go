package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecretHeader carries the shared secret on inbound requests.
const SecretHeader = "X-API-Secret"

// SharedSecret rejects requests whose secret header does not match. A bad
// or missing secret means the job never starts.
func SharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(SecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or missing API secret",
			})
			return
		}
		c.Next()
	}
}
