package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanctyr/site/internal/services"
	"github.com/sanctyr/site/pkg/session"
	logger "github.com/sanctyr/site/middleware/log"
)

// AuthHandler drives the Discord OAuth login flow and the session cookie
// lifecycle. Failures during the callback never surface as API errors; the
// browser is mid-redirect, so they land on the login page as a query
// parameter.
type AuthHandler struct {
	Auth     *services.AuthService
	Sessions *session.Store
	AppURL   string
	Logger   *logger.Logger
}

func NewAuthHandler(auth *services.AuthService, sessions *session.Store, appURL string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, AppURL: appURL, Logger: log}
}

// Login redirects the browser to Discord's authorize URL.
func (h *AuthHandler) Login(c *gin.Context) {
	loginURL, err := h.Auth.LoginURL()
	if err != nil {
		h.redirectLoginError(c, "Server configuration error")
		return
	}
	c.Redirect(http.StatusFound, loginURL)
}

// Callback handles the OAuth redirect: validates state, exchanges the code,
// fetches the user and seals the session cookie.
func (h *AuthHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.redirectLoginError(c, errParam)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.redirectLoginError(c, "No code provided")
		return
	}

	if err := h.Auth.VerifyState(c.Query("state")); err != nil {
		h.Logger.Warn("oauth state rejected", zap.Error(err))
		h.redirectLoginError(c, "Invalid login state")
		return
	}

	user, err := h.Auth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Logger.Warn("oauth exchange failed", zap.Error(err))
		h.redirectLoginError(c, "Failed to authenticate with Discord")
		return
	}

	if err := h.Sessions.Set(c, user); err != nil {
		h.Logger.Error("sealing session failed", zap.Error(err))
		h.redirectLoginError(c, "An unexpected server error occurred")
		return
	}

	c.Redirect(http.StatusFound, h.AppURL+"/")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Session returns the current session user, or null for anonymous
// visitors. Session presence is the sole authorization signal the UI uses.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": h.Sessions.Get(c)})
}

func (h *AuthHandler) redirectLoginError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, h.AppURL+"/login?error="+url.QueryEscape(message))
}
