package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/database/testutil"
	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/pkg/response"
)

func TestSessionAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	sessions, err := iauth.NewSessionService(db, iauth.SessionConfig{Duration: time.Hour})
	require.NoError(t, err)

	user := &models.User{Email: "guard@example.com", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	issueReq := httptest.NewRequest(http.MethodPost, "/", nil)
	issued, err := sessions.CreateSession(t.Context(), iauth.NewRequestContext(issueReq, httptest.NewRecorder()), user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/secure", SessionAuth(sessions), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"email":   current.Email,
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var denied response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &denied))
	require.Equal(t, "UNAUTHORIZED", denied.Error.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: iauth.AuthCookieName, Value: "unknown-token"})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: iauth.AuthCookieName, Value: issued.SessionToken})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, user.ID, payload["user_id"])
	require.Equal(t, "guard@example.com", payload["email"])
}

func TestIdentityRequestIsSharedWithinRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		first := IdentityRequest(c)
		first.SetCookie(&http.Cookie{Name: "probe", Value: "1"})

		value, ok := IdentityRequest(c).Cookie("probe")
		require.True(t, ok)
		require.Equal(t, "1", value)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}
