package controller

import (
	"net"
	"net/http"
	"strings"

	"modportal/web/entity"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonError sends the error envelope with the given status code.
func jsonError(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, entity.Msg{Message: msg})
}

// internalError sends a generic 500 without leaking internal detail.
func internalError(c *gin.Context, msg string) {
	jsonError(c, http.StatusInternalServerError, msg)
}
