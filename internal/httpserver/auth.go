package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartsvc "storefront/internal/service/cart"
)

const sessionKeyHeader = "X-Session-Key"

// adminAuthMiddleware guards the back-office routes with a static bearer
// token. An empty configured token disables the admin surface entirely.
func adminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin surface disabled"})
			return
		}
		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}

// sessionKeyMiddleware resolves the cart session key from the request
// header, issuing a fresh one when the client has none yet. The key is
// echoed on every response so first-time clients can persist it.
func sessionKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(sessionKeyHeader)
		if key == "" {
			key = cartsvc.NewSessionKey()
		}
		c.Set("sessionKey", key)
		c.Header(sessionKeyHeader, key)
		c.Next()
	}
}

func sessionKey(c *gin.Context) string {
	return c.GetString("sessionKey")
}
