package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/response"
)

type SessionHandler struct {
	sessions *iauth.SessionService
	headless *iauth.HeadlessSessions
}

func NewSessionHandler(sessions *iauth.SessionService, headless *iauth.HeadlessSessions) *SessionHandler {
	return &SessionHandler{sessions: sessions, headless: headless}
}

// GET /api/sessions/me
func (h *SessionHandler) ListMySessions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := h.sessions.ListActiveSessions(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, sessions)
}

// GET /api/headless/session
func (h *SessionHandler) Headless(c *gin.Context) {
	id := h.headless.GetOrCreateHeadlessSessionID(middleware.IdentityRequest(c))
	response.Success(c, http.StatusOK, gin.H{"session_id": id})
}
