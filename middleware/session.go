package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	cartSessionKey    = "cart_session"
)

// CartSession attaches an anonymous cart session to the request. A missing
// or malformed header gets a fresh id. The id is always echoed back.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(CartSessionHeader)
		if _, err := uuid.Parse(session); err != nil {
			session = uuid.New().String()
		}
		c.Set(cartSessionKey, session)
		c.Header(CartSessionHeader, session)
		c.Next()
	}
}

// CartSessionID returns the session set by CartSession.
func CartSessionID(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
