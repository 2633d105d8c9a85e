package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/config"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/internal/module/auth"
	"github.com/simp-lee/myproject/internal/module/blog"
	"github.com/simp-lee/myproject/internal/module/library"
	"github.com/simp-lee/myproject/internal/module/practice"
	"github.com/simp-lee/myproject/internal/module/shop"
	"github.com/simp-lee/myproject/internal/module/task"
	"github.com/simp-lee/myproject/internal/store"
)

// adminLoginPath is where unauthenticated admin pages redirect.
const adminLoginPath = "/admin/login"

// buildModules wires repositories, services and handlers for every module and
// the admin site. When auth is enabled, staff tokens guard the admin and every
// blog route that writes.
func buildModules(db *gorm.DB, cfg *config.Config) ([]Module, error) {
	posts := blog.NewPostRepository(db)
	users := store.New[domain.User](db, store.Options{})
	blogSvc := blog.NewService(posts, users)

	var (
		modules    = []Module{practice.NewModule(practice.NewPracticeHandler())}
		siteOpts   = []admin.SiteOption{admin.WithHeader(cfg.Admin.SiteHeader)}
		writeGuard []gin.HandlerFunc
	)

	if cfg.Auth.Enabled {
		tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
		if err != nil {
			return nil, fmt.Errorf("setup auth: %w", err)
		}
		authSvc := auth.NewService(tokens, auth.NewStaffRepository(db))

		rps, burst := cfg.Server.RateLimit.LoginLimits()
		loginLimit := middleware.RateLimit(middleware.NewRateLimiter(rps, burst))
		modules = append(modules, auth.NewModule(auth.NewHandler(authSvc), auth.NewPageHandler(authSvc), loginLimit))

		staff := middleware.RequireStaff(authSvc)
		writeGuard = append(writeGuard, staff)
		siteOpts = append(siteOpts, admin.WithGuards(
			staff,
			middleware.RequireStaffPage(authSvc, adminLoginPath),
		))
	}

	modules = append(modules, blog.NewModule(blog.NewHandler(blogSvc), blog.NewPageHandler(blogSvc), writeGuard...))

	site := admin.NewSite(siteOpts...)
	library.RegisterAdmin(site, db)
	blog.RegisterAdmin(site, db)
	shop.RegisterAdmin(site, db)
	task.RegisterAdmin(site, db)

	return append(modules, site), nil
}
