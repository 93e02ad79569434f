package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/internal/services"
	"github.com/charlesng35/botspace/pkg/response"
)

// AuthHandler exposes sign-up, sign-in, sign-out and the current user.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /api/auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpInput
	if !bindAndValidate(c, &req) {
		return
	}

	result := h.auth.SignUp(requestContext(c), middleware.IdentityRequest(c), req, false)
	writeResult(c, http.StatusCreated, result)
}

// POST /api/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInInput
	if !bindAndValidate(c, &req) {
		return
	}

	result := h.auth.SignIn(requestContext(c), middleware.IdentityRequest(c), req)
	writeResult(c, http.StatusOK, result)
}

// POST /api/auth/sign-out?return_to=/path
func (h *AuthHandler) SignOut(c *gin.Context) {
	target := h.auth.SignOut(middleware.IdentityRequest(c), c.Query("return_to"))
	response.Success(c, http.StatusOK, gin.H{"redirect": target})
}

// GET /api/auth/me
//
// With ?redirect=true a failed lookup clears the auth cookie and redirects to the sign-in page.
func (h *AuthHandler) Me(c *gin.Context) {
	redirectOnFail, _ := strconv.ParseBool(c.Query("redirect"))

	result, redirect := h.auth.AuthUser(requestContext(c), middleware.IdentityRequest(c), redirectOnFail)
	if redirect != "" {
		c.Redirect(http.StatusFound, redirect)
		return
	}
	writeResult(c, http.StatusOK, result)
}
