package blog

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/internal/pkg"
)

// BlogPageHandler renders blog pages.
type BlogPageHandler struct {
	svc domain.BlogService
}

// NewPageHandler creates a BlogPageHandler.
func NewPageHandler(svc domain.BlogService) *BlogPageHandler {
	return &BlogPageHandler{svc: svc}
}

// RecentPage renders the posts created in the last 30 days.
// GET /posts/recent
func (h *BlogPageHandler) RecentPage(c *gin.Context) {
	result, err := h.svc.RecentPosts(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list recent posts", "error", err)
		middleware.ErrorPage(c, http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "blog/recent.html", gin.H{
		"Posts":      result.Items,
		"Pagination": result,
		"BaseURL":    "/posts/recent",
		"Days":       int(RecentWindow.Hours() / 24),
	})
}
