package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/web"
)

// RouteDeps holds what RegisterRoutes needs beyond the engine.
type RouteDeps struct {
	Modules []Module
	// APIMiddleware runs in front of every /api/v1 route.
	APIMiddleware []gin.HandlerFunc
	DB            *gorm.DB
	Mode          string // "debug" or "release"
	CSRFSecret    string
}

// healthPingTimeout caps the database ping behind GET /health.
const healthPingTimeout = time.Second

// RegisterRoutes mounts the site on r:
//
//	/static/*   assets, cached for a day outside debug mode
//	/health     database liveness as JSON
//	/           landing page
//	/api/v1/*   JSON API of every module, without CSRF
//	everything else: module pages behind CSRF, such as /admin/*,
//	/profile/:username, /home and /posts/recent
//
// Unmatched paths get the 404 page, or JSON under /api/.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	switch {
	case r == nil:
		return errors.New("router is nil")
	case deps == nil:
		return errors.New("route dependencies are nil")
	case len(deps.Modules) == 0:
		return errors.New("at least one module is required")
	case strings.TrimSpace(deps.CSRFSecret) == "":
		return errors.New("csrf secret is required")
	}

	if err := registerStaticRoutes(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	r.GET("/health", healthHandler(deps.DB))

	csrf := middleware.CSRF(deps.CSRFSecret)
	r.GET("/", csrf, func(c *gin.Context) {
		c.HTML(http.StatusOK, "home.html", gin.H{
			"CSRFToken": middleware.GetCSRFToken(c),
		})
	})

	api := r.Group("/api/v1", deps.APIMiddleware...)
	pages := r.Group("/", csrf)
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusNotFound, "not found")
	})
	return nil
}

// healthHandler reports 200 when the database answers a ping and 503
// otherwise. The ping shares the request's deadline.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := pingDatabase(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "degraded",
				"components": gin.H{"database": "error"},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"components": gin.H{"database": "ok"},
		})
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("no database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// registerStaticRoutes serves web/static from disk in debug mode, so edits
// show up without a rebuild, and from the embedded copy otherwise.
func registerStaticRoutes(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		dir, err := debugStaticDir()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		r.GET("/static/*filepath", staticHandler(http.FS(os.DirFS(dir)), ""))
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", staticHandler(http.FS(staticFS), "public, max-age=86400"))
	return nil
}

func debugStaticDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("resolve current file path")
	}
	dir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web", "static"))
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("stat static directory %q: %w", dir, err)
	}
	return dir, nil
}

// staticHandler serves fsys under /static, adding cacheControl when set.
func staticHandler(fsys http.FileSystem, cacheControl string) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		if cacheControl != "" {
			c.Header("Cache-Control", cacheControl)
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
