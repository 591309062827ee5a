package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(auth *service.AuthService, sessions *service.SessionService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := NewAuthHandlers(auth, log)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login/start", handlers.LoginStart)
		authGroup.POST("/login/complete", handlers.LoginComplete)
		authGroup.POST("/register/start", handlers.RegisterStart)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(sessions))
	{
		api.GET("/session", handlers.CurrentSession)
		api.DELETE("/session", handlers.Logout)
	}

	return router
}
