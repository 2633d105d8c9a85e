package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/pkg"
)

// StaffCookieName holds the admin session token set by the login page.
const StaffCookieName = "admin_token"

const staffContextKey = "StaffID"

// TokenVerifier resolves a bearer token to an active staff account id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uint, error)
}

// RequireStaff rejects API requests without a valid "Authorization: Bearer"
// token with 401.
func RequireStaff(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{Code: http.StatusUnauthorized, Message: "authentication required"})
			return
		}
		id, err := v.VerifyToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{Code: http.StatusUnauthorized, Message: "invalid or expired token"})
			return
		}
		c.Set(staffContextKey, id)
		c.Next()
	}
}

// RequireStaffPage redirects browsers without a valid admin cookie to
// loginPath, remembering where they were going.
func RequireStaffPage(v TokenVerifier, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(StaffCookieName)
		if err == nil && token != "" {
			if id, err := v.VerifyToken(c.Request.Context(), token); err == nil {
				c.Set(staffContextKey, id)
				c.Next()
				return
			}
		}

		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		if pkg.IsHTMX(c) {
			c.Header("HX-Redirect", target)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

// GetStaffID returns the authenticated staff id, or 0 when the request was
// not authenticated.
func GetStaffID(c *gin.Context) uint {
	return c.GetUint(staffContextKey)
}
