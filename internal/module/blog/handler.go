package blog

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/pkg"
)

// BlogHandler handles REST API requests for posts.
type BlogHandler struct {
	svc domain.BlogService
}

// NewHandler creates a BlogHandler.
func NewHandler(svc domain.BlogService) *BlogHandler {
	return &BlogHandler{svc: svc}
}

// Recent handles GET /api/v1/posts/recent.
func (h *BlogHandler) Recent(c *gin.Context) {
	result, err := h.svc.RecentPosts(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Create handles POST /api/v1/posts.
func (h *BlogHandler) Create(c *gin.Context) {
	in, ok := bindPost(c)
	if !ok {
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), in)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, post)
}

// Get handles GET /api/v1/posts/:id.
func (h *BlogHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, post)
}

// Update handles PUT /api/v1/posts/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	in, ok := bindPost(c)
	if !ok {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), id, in)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, post)
}

// Delete handles DELETE /api/v1/posts/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// DeleteUser handles DELETE /api/v1/users/:id.
func (h *BlogHandler) DeleteUser(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

func bindPost(c *gin.Context) (domain.PostInput, bool) {
	var req PostRequest
	if !pkg.BindAndValidate(c, &req) {
		return domain.PostInput{}, false
	}
	in, err := req.Input()
	if err != nil {
		pkg.Error(c, err)
		return domain.PostInput{}, false
	}
	return in, true
}
