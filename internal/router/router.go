package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/internal/handler"
	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Sessions *handler.SessionHandler
	Settings *handler.SettingsHandler
}

func New(authService *service.AuthService, handlers Handlers, cors middleware.CORSPolicy) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cors))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.GET("/me", middleware.Auth(authService), handlers.Auth.Me)

	pomodoro := api.Group("/pomodoro")
	pomodoro.Use(middleware.Auth(authService))
	pomodoro.POST("/sessions", handlers.Sessions.Create)
	pomodoro.GET("/sessions", handlers.Sessions.List)
	pomodoro.GET("/sessions/:id", handlers.Sessions.Get)
	pomodoro.PUT("/sessions/:id", handlers.Sessions.Update)
	pomodoro.DELETE("/sessions/:id", handlers.Sessions.Delete)
	pomodoro.GET("/stats", handlers.Sessions.Stats)
	pomodoro.GET("/settings", handlers.Settings.Get)
	pomodoro.PUT("/settings", handlers.Settings.Update)

	return engine
}
