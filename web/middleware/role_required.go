package middleware

import (
	"net/http"

	"modportal/web/entity"

	"github.com/gin-gonic/gin"
)

// LoginRequired rejects unauthenticated requests with 401.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Not authenticated"})
			return
		}
		c.Next()
	}
}

// AdminRequired rejects unauthenticated requests with 401 and
// authenticated non-admin requests with 403.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetPrincipal(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Not authenticated"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Message: "Admin access required"})
			return
		}
		c.Next()
	}
}
