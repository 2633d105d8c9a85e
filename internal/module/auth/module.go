package auth

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// AuthModule implements the app.Module interface for staff authentication.
type AuthModule struct {
	handler     *AuthHandler
	pageHandler *AuthPageHandler
	limit       []gin.HandlerFunc
}

// NewModule creates a new AuthModule. limit runs before both login endpoints.
// Panics if either handler is nil.
func NewModule(h *AuthHandler, ph *AuthPageHandler, limit ...gin.HandlerFunc) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("auth.NewModule: pageHandler must not be nil")
	}
	return &AuthModule{handler: h, pageHandler: ph, limit: limit}
}

// RegisterRoutes registers the login API and the admin login pages.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.POST("/auth/login", m.chain(m.handler.Login)...)

	if pages == nil {
		return
	}
	pages.GET("/admin/login", m.pageHandler.LoginPage)
	pages.POST("/admin/login", m.chain(m.pageHandler.LoginSubmit)...)
	pages.POST("/admin/logout", m.pageHandler.Logout)
}

func (m *AuthModule) chain(h gin.HandlerFunc) []gin.HandlerFunc {
	return append(slices.Clip(m.limit), h)
}
