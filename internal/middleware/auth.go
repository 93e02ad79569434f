package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/response"
)

const (
	CtxUserKey    = "authUser"
	CtxUserIDKey  = "userID"
	ctxRequestKey = "identityRequest"
)

// IdentityRequest returns the request view shared by every identity call in this request,
// so cookies written by one step are visible to the next.
func IdentityRequest(c *gin.Context) *iauth.RequestContext {
	if v, ok := c.Get(ctxRequestKey); ok {
		if rc, ok := v.(*iauth.RequestContext); ok {
			return rc
		}
	}
	rc := iauth.NewRequestContext(c.Request, c.Writer)
	c.Set(ctxRequestKey, rc)
	return rc
}

// SessionAuth requires a valid session cookie. Every failure is reported as 401 UNAUTHORIZED.
func SessionAuth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		checked, err := sessions.CheckSession(c.Request.Context(), IdentityRequest(c), nil)
		if err != nil || checked.User == nil {
			response.Abort(c, errors.ErrUnauthorized.WithInternal(err))
			return
		}

		c.Set(CtxUserKey, checked.User)
		c.Set(CtxUserIDKey, checked.User.ID)

		c.Next()
	}
}

// CurrentUser returns the user attached by SessionAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
