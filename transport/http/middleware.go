package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/service"
)

const sessionContextKey = "session"

// AuthMiddleware resolves the caller's session from the Authorization header
// and renews its sliding expiration. Requests without a live session are
// rejected with 401.
func AuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.AuthenticateCurrent(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, core.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			case errors.Is(err, core.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			case errors.Is(err, core.ErrSessionNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session not found or expired"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			}
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) (core.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return core.Session{}, false
	}

	session, ok := value.(core.Session)
	return session, ok
}
