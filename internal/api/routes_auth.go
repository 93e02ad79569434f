package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/handlers"
	"github.com/charlesng35/botspace/internal/middleware"
)

func registerAuthRoutes(api *gin.RouterGroup, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth)

	auth := api.Group("/auth")
	if deps.Config.Auth.RateLimit.Enabled {
		requests, window := deps.Config.Auth.RateLimitPolicy()
		auth.Use(middleware.RateLimit(deps.RateStore, requests, window))
	}
	{
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-in", authHandler.SignIn)
		auth.POST("/sign-out", authHandler.SignOut)
		auth.GET("/me", authHandler.Me)
	}
}
