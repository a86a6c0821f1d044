// Package web provides the portal's web server: routing, session store
// selection, middleware wiring and background maintenance jobs.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"modportal/config"
	"modportal/logger"
	"modportal/util/common"
	"modportal/util/random"
	"modportal/web/cache"
	"modportal/web/controller"
	"modportal/web/job"
	"modportal/web/middleware"
	"modportal/web/service"
	"modportal/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Server is the portal web server. The database handle is injected at
// construction; all services are built from it.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	db        *gorm.DB
	gormStore *cache.GormStore

	userService   *service.UserService
	authService   *service.AuthService
	statusService *service.StatusService
	auditService  *service.AuditLogService

	auth      *controller.AuthController
	moderator *controller.ModeratorController

	cron *cron.Cron
}

// NewServer creates a web server bound to the given database.
func NewServer(db *gorm.DB) *Server {
	userService := service.NewUserService(db)
	return &Server{
		db:            db,
		userService:   userService,
		authService:   service.NewAuthService(userService),
		statusService: service.NewStatusService(userService),
		auditService:  service.NewAuditLogService(db),
	}
}

// sessionStore selects the session backend: redis when configured,
// otherwise the portal database.
func (s *Server) sessionStore(secret []byte) sessions.Store {
	if addr := config.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		logger.Info("using redis session store at", addr)
		return cache.NewRedisStore(client, secret)
	}
	s.gormStore = cache.NewGormStore(s.db, secret)
	return s.gormStore
}

// initRouter initializes gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	basePath := config.GetBasePath()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	secret := config.GetSessionSecret()
	if secret == "" {
		// Ephemeral secret: sessions do not survive a restart.
		secret = random.Seq(32)
		logger.Warning("no session secret configured, generated an ephemeral one")
	}

	store := s.sessionStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge(),
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions(session.Name, store))
	engine.Use(middleware.Principal(s.userService))
	engine.Use(func(c *gin.Context) {
		s.statusService.CountRequest()
		c.Next()
	})

	api := engine.Group(basePath + "api")
	s.auth = controller.NewAuthController(api, s.authService)
	s.moderator = controller.NewModeratorController(api, s.userService, s.statusService, s.auditService)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the maintenance jobs.
func (s *Server) startTask() {
	if s.gormStore != nil {
		s.cron.AddJob("@every 1h", job.NewPruneSessionsJob(s.gormStore))
	}
	s.cron.AddJob("@daily", job.NewAuditCleanupJob(s.auditService))
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		defer common.Recover("web server panic")
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and its jobs.
func (s *Server) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
