package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanctyr/site/pkg/session"
)

// SessionUserKey is the gin context key the authenticated user is stored
// under.
const SessionUserKey = "session_user"

// RequireSession rejects requests without a valid session cookie and stores
// the decoded user on the context for handlers downstream.
func RequireSession(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := sessions.Get(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(SessionUserKey, user)
		c.Next()
	}
}
