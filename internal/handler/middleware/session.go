package middleware

import (
	"net/http"

	"cart-reservation-service/internal/handler/httperr"
	"cart-reservation-service/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// SessionKeyHeader carries the opaque shopper identity issued by the storefront.
// Authentication itself is an external collaborator; this layer only requires
// the key to be present and sane.
const SessionKeyHeader = "X-Session-Key"

const (
	sessionKeyContextKey = "session_key"
	maxSessionKeyLength  = 128
)

var errMissingSessionKey = errs.New("session key required")

type SessionMiddleware struct{}

func NewSessionMiddleware() *SessionMiddleware {
	return &SessionMiddleware{}
}

func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(SessionKeyHeader)
		if key == "" || len(key) > maxSessionKeyLength {
			httperr.AbortWithError(c, http.StatusBadRequest, errMissingSessionKey,
				"X-Session-Key header required", nil)
			return
		}
		c.Set(sessionKeyContextKey, key)
		c.Next()
	}
}

func GetSessionKey(c *gin.Context) (string, bool) {
	v, exists := c.Get(sessionKeyContextKey)
	if !exists {
		return "", false
	}
	key, ok := v.(string)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
