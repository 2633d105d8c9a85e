package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/middleware"
)

const defaultNext = "/admin"

// AuthPageHandler serves the admin login form.
type AuthPageHandler struct {
	svc Service
}

// NewPageHandler creates a new AuthPageHandler with the given service.
func NewPageHandler(svc Service) *AuthPageHandler {
	return &AuthPageHandler{svc: svc}
}

// LoginPage renders the login form.
// GET /admin/login
func (h *AuthPageHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/login.html", gin.H{
		"Next":      safeNext(c.Query("next")),
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}

// LoginSubmit checks the credentials, stores the token in an HttpOnly cookie
// and redirects to the requested admin page.
// POST /admin/login
func (h *AuthPageHandler) LoginSubmit(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	next := safeNext(c.PostForm("next"))

	resp, err := h.svc.Login(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		status, msg := http.StatusUnauthorized, "Incorrect email or password."
		if !domain.IsUnauthorized(err) {
			slog.ErrorContext(c.Request.Context(), "admin login failed", "error", err)
			status, msg = http.StatusInternalServerError, "Login is unavailable, please try again."
		}
		c.HTML(status, "auth/login.html", gin.H{
			"Error":     msg,
			"Email":     email,
			"Next":      next,
			"CSRFToken": middleware.GetCSRFToken(c),
		})
		return
	}

	maxAge := int(time.Until(time.Unix(resp.ExpiresAt, 0)).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.StaffCookieName, resp.Token, maxAge, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, next)
}

// Logout clears the admin cookie.
// POST /admin/logout
func (h *AuthPageHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.StaffCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNext
	}
	return next
}
