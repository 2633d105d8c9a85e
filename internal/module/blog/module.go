package blog

import "github.com/gin-gonic/gin"

// BlogModule implements the app.Module interface for posts.
type BlogModule struct {
	handler     *BlogHandler
	pageHandler *BlogPageHandler
	writeGuard  []gin.HandlerFunc
}

// NewModule creates a BlogModule. Handlers in writeGuard run before every
// route that creates, changes or deletes data. Panics if either handler is nil.
func NewModule(h *BlogHandler, ph *BlogPageHandler, writeGuard ...gin.HandlerFunc) *BlogModule {
	if h == nil {
		panic("blog.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("blog.NewModule: pageHandler must not be nil")
	}
	return &BlogModule{handler: h, pageHandler: ph, writeGuard: writeGuard}
}

// RegisterRoutes registers post API and page routes.
func (m *BlogModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/posts/recent", m.handler.Recent)
	api.GET("/posts/:id", m.handler.Get)

	write := api.Group("", m.writeGuard...)
	write.POST("/posts", m.handler.Create)
	write.PUT("/posts/:id", m.handler.Update)
	write.DELETE("/posts/:id", m.handler.Delete)
	write.DELETE("/users/:id", m.handler.DeleteUser)

	if pages == nil {
		return
	}
	pages.GET("/posts/recent", m.pageHandler.RecentPage)
}
