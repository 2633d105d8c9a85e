package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/pkg"
)

// adminPrefix is the URL prefix of the admin pages.
const adminPrefix = "/admin"

var errorPages = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusForbidden:           "errors/403.html",
	http.StatusNotFound:            "errors/404.html",
	http.StatusInternalServerError: "errors/500.html",
}

// WantsHTML reports whether the client should get an HTML page rather than
// the JSON envelope. An explicit Accept header decides; otherwise everything
// outside /api/ is a page.
func WantsHTML(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	switch {
	case strings.Contains(accept, "text/html"):
		return true
	case strings.Contains(accept, "application/json"):
		return false
	}
	return !strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// ErrorPage renders the error template for status. Codes without their own
// template use the 500 page. Admin URLs get the admin variant, which links
// back to the admin index. If rendering fails the client gets plain text.
func ErrorPage(c *gin.Context, status int) {
	defer func() {
		if recover() != nil {
			c.Data(status, "text/plain; charset=utf-8", fmt.Appendf(nil, "%d %s", status, http.StatusText(status)))
		}
	}()

	name, ok := errorPages[status]
	if !ok {
		name = errorPages[http.StatusInternalServerError]
	}
	admin := isAdminPath(c.Request.URL.Path)
	back := "/"
	if admin {
		back = adminPrefix
	}
	c.HTML(status, name, gin.H{
		"Status":    status,
		"Admin":     admin,
		"BackURL":   back,
		"RequestID": GetRequestID(c),
	})
}

// AbortWithError ends the request with status, as a page or as JSON
// depending on WantsHTML.
func AbortWithError(c *gin.Context, status int, message string) {
	c.Abort()
	if WantsHTML(c) {
		ErrorPage(c, status)
		return
	}
	c.JSON(status, pkg.Response{Code: status, Message: message})
}

func isAdminPath(path string) bool {
	return path == adminPrefix || strings.HasPrefix(path, adminPrefix+"/")
}
