package middleware

import (
	"net/http"
	"strconv"

	"modportal/logger"
	"modportal/web/service"

	"github.com/gin-gonic/gin"
)

// Audit records mutating admin requests to the audit log after the
// handler completes. Reads are not audited.
func Audit(audits *service.AuditLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		user := GetPrincipal(c)
		if user == nil {
			return
		}

		resourceId, _ := strconv.Atoi(c.Param("id"))
		details := map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}

		err := audits.LogAction(
			user.Id,
			user.Username,
			actionFromMethod(c.Request.Method),
			"moderator",
			resourceId,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
			details,
		)
		if err != nil {
			logger.Warning("failed to log audit action:", err)
		}
	}
}

func actionFromMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPatch, http.MethodPut:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return method
	}
}
