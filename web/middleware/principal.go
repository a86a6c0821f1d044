// Package middleware provides gin middleware for principal resolution,
// role gating and audit logging.
package middleware

import (
	"modportal/database"
	"modportal/database/model"
	"modportal/logger"
	"modportal/web/service"
	"modportal/web/session"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Principal resolves the session's bound user id into the current user
// row and stores it in the gin context. The row is re-fetched on every
// request, so a deleted or re-roled account loses access immediately.
// Requests without a valid session simply continue unauthenticated.
func Principal(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.GetLoginUserId(c)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUser(id)
		if err != nil {
			if !database.IsNotFound(err) {
				logger.Warning("resolve principal failed:", err)
			}
			c.Next()
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// GetPrincipal returns the authenticated user for this request, or nil.
func GetPrincipal(c *gin.Context) *model.User {
	if obj, exists := c.Get(principalKey); exists {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}
