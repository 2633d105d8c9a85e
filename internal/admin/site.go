// Package admin generates a management interface for registered models: a
// JSON API under /api/v1/admin and HTML pages under /admin.
package admin

import (
	"fmt"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// Options declares how a model appears in the admin.
type Options struct {
	// Name is the URL segment, e.g. "books".
	Name string
	// Verbose is the singular display name. Defaults to the Go type name.
	Verbose string
	// VerbosePlural defaults to Verbose + "s".
	VerbosePlural string
	// ListDisplay are the changelist columns. Defaults to id followed by every
	// non-relation column.
	ListDisplay []string
	// SearchFields are matched with LIKE by the ?q= parameter.
	SearchFields []string
	// ListFilter columns accept exact matches; date and time columns also
	// accept __gte, __gt, __lte and __lt bounds.
	ListFilter []string
}

// StoreOptions derives repository options that allow everything the admin
// registration may request.
func (o Options) StoreOptions() store.Options {
	return store.Options{
		SortFields:   o.sortable(),
		FilterFields: slices.Clone(o.ListFilter),
		SearchFields: slices.Clone(o.SearchFields),
	}
}

func (o Options) sortable() []string {
	fields := []string{"id"}
	for _, f := range o.ListDisplay {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Site holds the admin registrations.
type Site struct {
	header    string
	now       func() time.Time
	apiGuard  gin.HandlerFunc
	pageGuard gin.HandlerFunc

	mu     sync.RWMutex
	models map[string]entry
	order  []string
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithHeader sets the title shown on every admin page.
func WithHeader(header string) SiteOption {
	return func(s *Site) {
		if header != "" {
			s.header = header
		}
	}
}

// WithClock sets the reference time for relative date filters.
func WithClock(now func() time.Time) SiteOption {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGuards installs access checks in front of the API and page routes.
// Either may be nil.
func WithGuards(api, pages gin.HandlerFunc) SiteOption {
	return func(s *Site) {
		s.apiGuard, s.pageGuard = api, pages
	}
}

// NewSite creates an empty admin site.
func NewSite(opts ...SiteOption) *Site {
	s := &Site{
		header: "Site administration",
		now:    time.Now,
		models: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Header returns the site title.
func (s *Site) Header() string {
	return s.header
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Register exposes T through the admin using repo for persistence. db is only
// used to read T's schema. Register panics when opts name a column T does not
// have, when the name is malformed, or when it is already taken: these are
// programming errors that must fail at startup.
func Register[T any](s *Site, db *gorm.DB, repo domain.Repository[T], opts Options) {
	if repo == nil {
		panic(fmt.Sprintf("admin.Register(%s): repository must not be nil", opts.Name))
	}
	if !namePattern.MatchString(opts.Name) {
		panic(fmt.Sprintf("admin.Register: invalid name %q", opts.Name))
	}

	sch, err := parseSchema[T](db)
	if err != nil {
		panic(fmt.Sprintf("admin.Register(%s): %v", opts.Name, err))
	}

	ma, err := newModelAdmin(repo, sch, opts)
	if err != nil {
		panic(fmt.Sprintf("admin.Register(%s): %v", opts.Name, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.models[opts.Name]; dup {
		panic(fmt.Sprintf("admin.Register: %q is already registered", opts.Name))
	}
	s.models[opts.Name] = ma
	s.order = append(s.order, opts.Name)
}

func parseSchema[T any](db *gorm.DB) (*schema.Schema, error) {
	if db == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return stmt.Schema, nil
}

func (s *Site) lookup(name string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.models[name]
	return e, ok
}

// Models returns the registrations in registration order.
func (s *Site) Models() []ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ModelInfo, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name].info())
	}
	return out
}

// ModelInfo describes a registration.
type ModelInfo struct {
	Name          string   `json:"name"`
	Verbose       string   `json:"verbose"`
	VerbosePlural string   `json:"verbose_plural"`
	ListDisplay   []string `json:"list_display"`
	SearchFields  []string `json:"search_fields"`
	ListFilter    []string `json:"list_filter"`
}

// RegisterRoutes mounts the admin API on api and the pages on pages, both
// under /admin.
func (s *Site) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	h := &apiHandler{site: s}
	ag := api.Group("/admin")
	if s.apiGuard != nil {
		ag.Use(s.apiGuard)
	}
	ag.GET("", h.Index)
	ag.GET("/:model", h.List)
	ag.POST("/:model", h.Create)
	ag.GET("/:model/:id", h.Get)
	ag.PUT("/:model/:id", h.Update)
	ag.DELETE("/:model/:id", h.Delete)

	if pages == nil {
		return
	}
	ph := &pageHandler{site: s}
	pg := pages.Group("/admin")
	if s.pageGuard != nil {
		pg.Use(s.pageGuard)
	}
	pg.GET("", ph.Index)
	pg.GET("/:model", ph.Changelist)
	pg.GET("/:model/:id", ph.Detail)
	pg.DELETE("/:model/:id", ph.DeleteHTMX)
}
