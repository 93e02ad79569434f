package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/services"
)

type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.InitializeWorkspaceInput
	if !bindAndValidate(c, &req) {
		return
	}

	writeResult(c, http.StatusCreated, h.workspaces.Initialize(requestContext(c), user, req))
}

// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	writeResult(c, http.StatusOK, h.workspaces.ListForUser(requestContext(c), user.ID))
}
