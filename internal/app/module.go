package app

import "github.com/gin-gonic/gin"

// Module is a feature area such as the blog or the admin site. api is
// /api/v1 and pages is the CSRF-protected site root; a module without pages
// leaves that group untouched.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}
