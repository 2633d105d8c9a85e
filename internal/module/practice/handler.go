// Package practice serves the two standalone views of the tutorial: a plain
// text profile greeting and a static home page.
package practice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/middleware"
)

// PracticeHandler serves the practice views. It has no dependencies.
type PracticeHandler struct{}

// NewPracticeHandler creates a PracticeHandler.
func NewPracticeHandler() *PracticeHandler {
	return &PracticeHandler{}
}

// Profile writes "profile age of <username>" as plain text. The username is
// echoed verbatim; no lookup is performed.
// GET /profile/:username
func (h *PracticeHandler) Profile(c *gin.Context) {
	c.String(http.StatusOK, "profile age of %s", c.Param("username"))
}

// Home renders the practice home page.
// GET /home
func (h *PracticeHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "practice/home.html", gin.H{
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}
