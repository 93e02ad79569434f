package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/handlers"
)

func registerWorkspaceRoutes(api *gin.RouterGroup, requireSession gin.HandlerFunc, deps Dependencies) {
	workspaceHandler := handlers.NewWorkspaceHandler(deps.Workspaces)

	workspaces := api.Group("/workspaces")
	workspaces.Use(requireSession)
	{
		workspaces.GET("", workspaceHandler.List)
		workspaces.POST("", workspaceHandler.Create)
	}
}
