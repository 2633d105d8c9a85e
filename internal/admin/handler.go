package admin

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/internal/pkg"
)

// apiHandler serves the JSON admin API.
type apiHandler struct {
	site *Site
}

// Index handles GET /api/v1/admin.
func (h *apiHandler) Index(c *gin.Context) {
	pkg.Success(c, gin.H{
		"site_header": h.site.Header(),
		"models":      h.site.Models(),
	})
}

// List handles GET /api/v1/admin/:model.
func (h *apiHandler) List(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	result, err := e.list(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/admin/:model/:id.
func (h *apiHandler) Get(c *gin.Context) {
	e, id, ok := h.entryAndID(c)
	if !ok {
		return
	}
	record, err := e.get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, record)
}

// Create handles POST /api/v1/admin/:model.
func (h *apiHandler) Create(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	record, ok := e.create(c)
	if !ok {
		return
	}
	slog.InfoContext(c.Request.Context(), "admin record created", "model", c.Param("model"))
	pkg.Created(c, record)
}

// Update handles PUT /api/v1/admin/:model/:id.
func (h *apiHandler) Update(c *gin.Context) {
	e, id, ok := h.entryAndID(c)
	if !ok {
		return
	}
	record, ok := e.update(c, id)
	if !ok {
		return
	}
	slog.InfoContext(c.Request.Context(), "admin record updated", "model", c.Param("model"), "id", id)
	pkg.Success(c, record)
}

// Delete handles DELETE /api/v1/admin/:model/:id.
func (h *apiHandler) Delete(c *gin.Context) {
	e, id, ok := h.entryAndID(c)
	if !ok {
		return
	}
	if err := e.remove(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	slog.InfoContext(c.Request.Context(), "admin record deleted", "model", c.Param("model"), "id", id)
	pkg.Success(c, nil)
}

func (h *apiHandler) entry(c *gin.Context) (entry, bool) {
	name := c.Param("model")
	e, ok := h.site.lookup(name)
	if !ok {
		pkg.Error(c, domain.NewAppError(domain.CodeNotFound, "unknown model "+name, nil))
		return nil, false
	}
	middleware.SetAdminModel(c, name)
	return e, true
}

func (h *apiHandler) entryAndID(c *gin.Context) (entry, uint, bool) {
	e, ok := h.entry(c)
	if !ok {
		return nil, 0, false
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return nil, 0, false
	}
	return e, id, true
}
