package router

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"focusflow/internal/handler"
	"focusflow/internal/middleware"
	"focusflow/internal/repository"
	"focusflow/internal/service"
)

// Wire builds the HTTP stack on an already migrated database.
func Wire(database *sql.DB, jwtSecret string, tokenTTL time.Duration, corsOrigins []string) *gin.Engine {
	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	authService := service.NewAuthService(userRepo, settingsRepo, jwtSecret, tokenTTL)
	sessionService := service.NewSessionService(sessionRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	return New(authService, Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Sessions: handler.NewSessionHandler(sessionService),
		Settings: handler.NewSettingsHandler(settingsService),
	}, middleware.DefaultCORSPolicy(corsOrigins))
}
