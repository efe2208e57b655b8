package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/laconfrerie/confrerie-api/docs"
	v1 "github.com/laconfrerie/confrerie-api/internal/api/handler/v1"
	"github.com/laconfrerie/confrerie-api/internal/api/middleware"
	"github.com/laconfrerie/confrerie-api/internal/config"
	"github.com/laconfrerie/confrerie-api/internal/pkg/guard"
	"github.com/laconfrerie/confrerie-api/internal/repository"
	"github.com/laconfrerie/confrerie-api/internal/service"
	"github.com/laconfrerie/confrerie-api/internal/session"
	"github.com/laconfrerie/confrerie-api/internal/upload"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	repo     *repository.DocumentRepository
	sessions *session.Store
	cooldown *guard.Cooldown
}

func NewServer(conf *config.AppConfig, store repository.DocumentDAO) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:   conf,
		Router:   engine,
		repo:     repository.NewDocumentRepository(store, repository.NewNormalizer()),
		sessions: session.NewStore(conf.Session.IdleTTL, conf.Session.CleanupInterval),
		cooldown: guard.NewCooldown(conf.Guard.Window, conf.Guard.CleanupInterval),
	}

	svc, err := s.initServices()
	if err != nil {
		s.Close()
		return nil, err
	}

	cookies := middleware.NewSessions(s.sessions, svc.Users, conf.API.SecretKey, conf.Auth.RememberTTL, conf.API.CookieSecure)
	uploads := upload.NewStore(conf.Storage.UploadDir, conf.Storage.UploadURL, conf.Storage.MaxUploadBytes)

	s.MountMiddlewares()

	actionHandler := v1.NewActionHandler(svc, s.sessions, cookies, uploads)
	pageHandler := v1.NewPageHandler(svc, s.sessions, conf.Notification.PageLimit)
	healthHandler := v1.NewHealthHandler(s.repo)
	s.MountHandlers(cookies, actionHandler, pageHandler, healthHandler)

	return s, nil
}

func (s *Server) initServices() (v1.Services, error) {
	policy, err := service.NewPasswordPolicy(s.Config.Auth.MinPasswordLength, s.Config.Auth.PasswordPattern)
	if err != nil {
		return v1.Services{}, fmt.Errorf("service.NewPasswordPolicy -> %w", err)
	}

	rnd := service.NewLockedRand(time.Now().UnixNano())
	env := service.DefaultEnv(rnd)

	return v1.Services{
		Auth:          service.NewAuthService(s.repo, env, policy),
		Users:         service.NewUserService(s.repo, env, policy),
		Posts:         service.NewPostService(s.repo, env, s.cooldown),
		Parties:       service.NewPartyService(s.repo, env, s.cooldown),
		Notifications: service.NewNotificationService(s.repo, env, s.Config.Notification.PollLimit),
		Challenges:    service.NewChallengeService(s.repo, rnd),
		Admin:         service.NewAdminService(s.repo, s.repo, env, policy),
	}, nil
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(middleware.ZapLogger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(cookies *middleware.Sessions, actionHandler *v1.ActionHandler, pageHandler *v1.PageHandler, healthHandler *v1.HealthHandler) {
	const basePath = "/api/v1"

	pages := s.Router.Group("/", cookies.Handle())
	{
		pages.GET("/", pageHandler.HandlePage)
	}

	forms := s.Router.Group("/", cookies.Handle(), cookies.RequireCSRF())
	{
		forms.POST("/", actionHandler.HandleAction)
	}

	actions := s.Router.Group(basePath, cookies.Handle(), cookies.RequireCSRF())
	{
		actions.POST("/actions", actionHandler.HandleAction)
	}

	s.Router.GET("/healthz", healthHandler.HandleHealthcheck)
	s.Router.Static(s.Config.Storage.UploadURL, s.Config.Storage.UploadDir)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "La Confrerie API"
	docs.SwaggerInfo.Description = "Points, parties and posts of La Confrerie."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// Close stops the background work started by NewServer.
func (s *Server) Close() {
	s.cooldown.Stop()
	s.sessions.Stop()
}
