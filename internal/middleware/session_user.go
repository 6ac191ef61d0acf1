package middleware

import (
	"github.com/coursehub/course-platform-api/internal/constants"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// LoadSessionUser stores the session user id in the request context when a
// session exists, without requiring authentication. Used on world-readable
// routes whose responses vary by viewer.
func LoadSessionUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(constants.ContextKeyUserID); userID != nil {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}
}
