package controller

import (
	"errors"
	"net/http"
	"strconv"

	"modportal/logger"
	"modportal/web/middleware"
	"modportal/web/service"
	"modportal/web/session"

	"github.com/gin-gonic/gin"
)

// CredentialsForm replaces a moderator's username and password.
type CredentialsForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ModeratorController handles admin registration and the moderator
// management API.
type ModeratorController struct {
	userService   *service.UserService
	statusService *service.StatusService
	auditService  *service.AuditLogService
}

// NewModeratorController creates a ModeratorController and registers
// its routes. Registration is open (it bootstraps the first admin);
// everything else requires an admin principal.
func NewModeratorController(g *gin.RouterGroup, userService *service.UserService, statusService *service.StatusService, auditService *service.AuditLogService) *ModeratorController {
	a := &ModeratorController{
		userService:   userService,
		statusService: statusService,
		auditService:  auditService,
	}

	admin := g.Group("/admin")
	admin.POST("/register", a.register)

	guarded := admin.Group("")
	guarded.Use(middleware.AdminRequired(), middleware.Audit(auditService))
	{
		guarded.GET("/moderators", a.list)
		guarded.POST("/moderators", a.create)
		guarded.PATCH("/moderators/:id", a.update)
		guarded.PATCH("/moderators/:id/credentials", a.updateCredentials)
		guarded.DELETE("/moderators/:id", a.delete)
		guarded.GET("/status", a.status)
		guarded.GET("/logs", a.logs)
		guarded.GET("/audit", a.audit)
	}

	return a
}

// register creates an admin account and logs it in. The badge number is
// forced to the admin sentinel, so at most one admin can be registered.
func (a *ModeratorController) register(c *gin.Context) {
	var form service.AdminForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	admin, err := a.userService.CreateAdmin(&form)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			jsonError(c, http.StatusBadRequest, "Username already exists")
			return
		}
		internalError(c, "Failed to register admin")
		return
	}

	if err := session.SetLoginUser(c, admin.Id); err != nil {
		logger.Warning("unable to log in registered admin:", err)
	}
	logger.Infof("admin %s registered from %s", admin.Username, getRemoteIp(c))
	c.JSON(http.StatusCreated, admin)
}

func (a *ModeratorController) list(c *gin.Context) {
	moderators, err := a.userService.ListModerators()
	if err != nil {
		internalError(c, "Failed to fetch moderators")
		return
	}
	c.JSON(http.StatusOK, moderators)
}

func (a *ModeratorController) create(c *gin.Context) {
	var form service.ModeratorForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	moderator, err := a.userService.CreateModerator(&form)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			jsonError(c, http.StatusBadRequest, "Username or badge number already exists")
			return
		}
		internalError(c, "Failed to create moderator")
		return
	}
	c.JSON(http.StatusCreated, moderator)
}

func (a *ModeratorController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid moderator id")
		return
	}

	var patch service.ModeratorPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	moderator, err := a.userService.UpdateModerator(id, &patch)
	if err != nil {
		a.mutationError(c, err, "Failed to update moderator")
		return
	}
	c.JSON(http.StatusOK, moderator)
}

func (a *ModeratorController) updateCredentials(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid moderator id")
		return
	}

	var form CredentialsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	moderator, err := a.userService.UpdateModeratorCredentials(id, form.Username, form.Password)
	if err != nil {
		a.mutationError(c, err, "Failed to update moderator credentials")
		return
	}
	c.JSON(http.StatusOK, moderator)
}

func (a *ModeratorController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid moderator id")
		return
	}

	if err := a.userService.DeleteModerator(id); err != nil {
		a.mutationError(c, err, "Failed to delete moderator")
		return
	}
	c.Status(http.StatusOK)
}

// mutationError maps repository failures on moderator mutations to
// responses: missing or admin-role ids are 404, duplicate keys 400.
func (a *ModeratorController) mutationError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		jsonError(c, http.StatusNotFound, "Moderator not found")
	case errors.Is(err, service.ErrConflict):
		jsonError(c, http.StatusBadRequest, "Username or badge number already exists")
	default:
		internalError(c, msg)
	}
}

func (a *ModeratorController) status(c *gin.Context) {
	c.JSON(http.StatusOK, a.statusService.GetStatus())
}

func (a *ModeratorController) audit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	logs, err := a.auditService.GetAuditLogs(limit, offset)
	if err != nil {
		internalError(c, "Failed to fetch audit logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (a *ModeratorController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "50"))
	if err != nil || count <= 0 {
		count = 50
	}
	level := c.DefaultQuery("level", "INFO")
	c.JSON(http.StatusOK, logger.GetLogs(count, level))
}
