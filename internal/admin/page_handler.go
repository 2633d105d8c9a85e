package admin

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/internal/pkg"
)

// pageHandler serves the HTML admin.
type pageHandler struct {
	site *Site
}

// Header is a changelist column heading with its sort link.
type Header struct {
	Label   string
	SortURL string
	Sorted  string
}

// Index renders the list of registered models.
// GET /admin
func (h *pageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "admin/index.html", gin.H{
		"SiteHeader": h.site.Header(),
		"Models":     h.site.Models(),
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}

// Changelist renders one page of records with search, filters and sorting.
// GET /admin/:model
func (h *pageHandler) Changelist(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}

	req := pkg.ParsePageRequest(c)
	page, err := e.rows(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "admin changelist", "model", c.Param("model"), "error", err)
		middleware.ErrorPage(c, http.StatusInternalServerError)
		return
	}

	path := c.Request.URL.Path
	query := c.Request.URL.Query()
	info := e.info()

	c.HTML(http.StatusOK, "admin/changelist.html", gin.H{
		"SiteHeader": h.site.Header(),
		"Model":      info,
		"Headers":    headers(path, query, e.headers(), req.Sort),
		"Page":       page,
		"Search":     req.Search,
		"Searchable": len(info.SearchFields) > 0,
		"Filters":    buildFilters(path, query, e.filterColumns(), h.site.now()),
		"PrevURL":    withQuery(path, query, map[string]string{"page": strconv.Itoa(page.Page - 1)}),
		"NextURL":    withQuery(path, query, map[string]string{"page": strconv.Itoa(page.Page + 1)}),
		"PageLinks":  pageLinks(path, query, page),
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}

// pageLink is one numbered link in the changelist pager.
type pageLink struct {
	Number  int
	URL     string
	Current bool
}

func pageLinks(path string, query url.Values, page *RowPage) []pageLink {
	links := make([]pageLink, 0, len(page.Pages))
	for _, n := range page.Pages {
		links = append(links, pageLink{
			Number:  n,
			URL:     withQuery(path, query, map[string]string{"page": strconv.Itoa(n)}),
			Current: n == page.Page,
		})
	}
	return links
}

// Detail renders a read-only view of one record.
// GET /admin/:model/:id
func (h *pageHandler) Detail(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		middleware.ErrorPage(c, http.StatusBadRequest)
		return
	}

	d, err := e.detail(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			middleware.ErrorPage(c, http.StatusNotFound)
			return
		}
		slog.ErrorContext(c.Request.Context(), "admin detail", "model", c.Param("model"), "id", id, "error", err)
		middleware.ErrorPage(c, http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "admin/detail.html", gin.H{
		"SiteHeader": h.site.Header(),
		"Model":      e.info(),
		"Record":     d,
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}

// DeleteHTMX deletes a record from the changelist or detail page.
// DELETE /admin/:model/:id
func (h *pageHandler) DeleteHTMX(c *gin.Context) {
	name := c.Param("model")
	e, ok := h.site.lookup(name)
	if !ok {
		c.Header("HX-Reswap", "none")
		pkg.ShowToast(c, "Unknown model", pkg.ToastError)
		c.Status(http.StatusOK)
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		c.Header("HX-Reswap", "none")
		pkg.ShowToast(c, "Invalid id", pkg.ToastError)
		c.Status(http.StatusOK)
		return
	}

	middleware.SetAdminModel(c, name)
	info := e.info()
	if err := e.remove(c.Request.Context(), id); err != nil {
		c.Header("HX-Reswap", "none")
		pkg.ShowToast(c, pkg.SafeMessage(err, "Delete failed, please try again"), pkg.ToastError)
		c.Status(http.StatusOK)
		return
	}

	slog.InfoContext(c.Request.Context(), "admin record deleted", "model", name, "id", id)
	pkg.ShowToast(c, info.Verbose+" deleted", pkg.ToastSuccess)
	// The detail page asks to go back to the changelist; rows just disappear.
	if c.Query("redirect") == "1" {
		c.Header("HX-Redirect", "/admin/"+name)
	}
	c.Status(http.StatusOK)
}

func (h *pageHandler) entry(c *gin.Context) (entry, bool) {
	e, ok := h.site.lookup(c.Param("model"))
	if !ok {
		middleware.ErrorPage(c, http.StatusNotFound)
		return nil, false
	}
	middleware.SetAdminModel(c, c.Param("model"))
	return e, true
}

func headers(path string, query url.Values, cols []column, sort string) []Header {
	field, dir, _ := strings.Cut(sort, ":")
	out := make([]Header, 0, len(cols))
	for _, col := range cols {
		h := Header{Label: col.label}
		next := "asc"
		if field == col.name {
			h.Sorted = dir
			if dir == "asc" {
				next = "desc"
			}
		}
		h.SortURL = withQuery(path, query, map[string]string{"sort": col.name + ":" + next, "page": ""})
		out = append(out, h)
	}
	return out
}

// withQuery returns path with query updated by set. An empty value removes
// the key.
func withQuery(path string, query url.Values, set map[string]string) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	for k, v := range set {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
