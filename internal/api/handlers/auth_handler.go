// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"fsic-records-api-server/internal/api/middleware"
	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Authenticator is the part of service.AuthService the handler needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	SessionTTL() time.Duration
}

type AuthHandler struct {
	Auth       Authenticator
	CookieName string
	// Secure sets the Secure attribute; enabled in production.
	Secure bool
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondActionError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.CookieName, res.Token, int(h.Auth.SessionTTL().Seconds()), "/", "", h.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    res.Session,
	})
}

// Logout drops the cookie. The token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.CookieName, "", -1, "/", "", h.Secure, true)
	respondAction(c, http.StatusOK, "Logged out")
}

// Me returns the identity inside the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.CurrentUser(c)
	if session == nil {
		session = &auth.Session{}
	}
	respondData(c, session)
}
