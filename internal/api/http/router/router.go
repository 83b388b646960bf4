package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper-server/internal/api/http/handler"
	"github.com/dtroode/authkeeper-server/internal/api/http/middleware"
	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/service"
)

// Options control transport-level behavior of the auth endpoints.
type Options struct {
	Cookie              handler.CookieConfig
	RequireVerification bool
}

// Router represents the HTTP router for the credential lifecycle API.
type Router struct {
	authService    *service.Auth
	contextManager model.ContextManager
	opts           Options
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService *service.Auth,
	contextManager model.ContextManager,
	opts Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		contextManager: contextManager,
		opts:           opts,
		logger:         logger,
	}
}

// Register builds the gin engine with middleware and every route mounted
// under /api/v1.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)

	engine := gin.New()
	engine.Use(middleware.Recovery(r.logger), logging.Handle)

	v1 := engine.Group("/api/v1")
	r.registerAuthRoutes(v1.Group("/auth"))
	r.registerUserRoutes(v1.Group("/users", authenticate.Handle))

	return engine
}

func (r *Router) registerAuthRoutes(g *gin.RouterGroup) {
	h := handler.NewAuth(r.authService, r.opts.Cookie, r.opts.RequireVerification, r.logger)

	g.POST("/register", h.Register)
	g.POST("/register-with-verification", h.RegisterWithVerification)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/refresh", h.Refresh)
	g.GET("/verify-email", h.VerifyEmail)
	g.POST("/resend-verification", h.ResendVerification)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
}

func (r *Router) registerUserRoutes(g *gin.RouterGroup) {
	h := handler.NewUser(r.authService, r.contextManager, r.logger)

	g.GET("/me", h.Me)
	g.GET("", h.List)
}
