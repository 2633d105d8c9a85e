package practice

import "github.com/gin-gonic/gin"

// PracticeModule implements the app.Module interface for the practice views.
type PracticeModule struct {
	handler *PracticeHandler
}

// NewModule creates a PracticeModule. Panics if handler is nil.
func NewModule(h *PracticeHandler) *PracticeModule {
	if h == nil {
		panic("practice.NewModule: handler must not be nil")
	}
	return &PracticeModule{handler: h}
}

// RegisterRoutes registers the practice pages. There are no API routes.
func (m *PracticeModule) RegisterRoutes(_ *gin.RouterGroup, pages *gin.RouterGroup) {
	pages.GET("/profile/:username", m.handler.Profile)
	pages.GET("/home", m.handler.Home)
}
