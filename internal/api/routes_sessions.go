package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/handlers"
)

func registerSessionRoutes(api *gin.RouterGroup, requireSession gin.HandlerFunc, deps Dependencies) {
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Headless)

	api.GET("/sessions/me", requireSession, sessionHandler.ListMySessions)
	api.GET("/headless/session", sessionHandler.Headless)
}
