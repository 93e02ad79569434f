package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/internal/services"
	"github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUser returns the authenticated user, writing a 401 when there is none.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// writeResult renders a service Result with the envelope, using status on success.
func writeResult[T any](c *gin.Context, status int, result services.Result[T]) {
	if !result.Success {
		response.Error(c, result.Err())
		return
	}
	response.Success(c, status, result.Data)
}
