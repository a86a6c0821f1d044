// Package controller provides the HTTP handlers of the portal: login
// and session routes, the moderator ID card surface, and the admin
// management API.
package controller

import (
	"errors"
	"net/http"

	"modportal/config"
	"modportal/logger"
	"modportal/web/middleware"
	"modportal/web/service"
	"modportal/web/session"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// LoginForm represents the login request body.
type LoginForm struct {
	Username      string `json:"username" form:"username"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// AuthController handles login, logout and the authenticated user routes.
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates an AuthController and registers its routes.
func NewAuthController(g *gin.RouterGroup, authService *service.AuthService) *AuthController {
	a := &AuthController{authService: authService}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)

	user := g.Group("/user")
	user.Use(middleware.LoginRequired())
	{
		user.GET("", a.user)
		user.GET("/qrcode", a.qrcode)
	}
}

// login authenticates the credentials and binds the user to a fresh
// session. Unknown usernames and wrong passwords are indistinguishable
// in the response.
func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if form.Username == "" || form.Password == "" {
		jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := a.authService.Login(form.Username, form.Password, form.TwoFactorCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warningf("failed login for %q from %s", form.Username, getRemoteIp(c))
			jsonError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		internalError(c, "Failed to log in")
		return
	}

	if err := session.SetMaxAge(c, config.GetSessionMaxAge()); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user.Id); err != nil {
		internalError(c, "Failed to log in")
		return
	}

	logger.Infof("%s logged in from %s", user.Username, getRemoteIp(c))
	c.JSON(http.StatusOK, user)
}

// logout invalidates the session.
func (a *AuthController) logout(c *gin.Context) {
	if user := middleware.GetPrincipal(c); user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Status(http.StatusOK)
}

// user returns the authenticated principal.
func (a *AuthController) user(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetPrincipal(c))
}

// qrcode renders the principal's badge number as a PNG QR code for the
// virtual ID card.
func (a *AuthController) qrcode(c *gin.Context) {
	user := middleware.GetPrincipal(c)
	png, err := qrcode.Encode(user.BadgeNumber, qrcode.Medium, 256)
	if err != nil {
		internalError(c, "Failed to render QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
