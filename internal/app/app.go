package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/config"
	"github.com/simp-lee/myproject/internal/middleware"
	"github.com/simp-lee/myproject/internal/migration"
	"github.com/simp-lee/myproject/web"
)

// App serves the blog, shop and library sites and their admin. It owns the
// database pool and the logger and releases both when Run returns.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 5 * time.Second

// New opens the database, builds every module and registers routes. Debug
// mode also applies pending migrations; other modes expect "migrate up" to
// have run. On error everything opened so far is closed again.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a := &App{logger: log, cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("debug mode listening on all interfaces", slog.String("host", cfg.Server.Host))
	}

	if a.db, err = config.SetupDatabase(&cfg.Database, log.Logger); err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode {
		if err := migration.Run(context.Background(), a.db, cfg.Database.Driver); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migration completed", slog.String("driver", cfg.Database.Driver))
	}

	modules, err := buildModules(a.db, cfg)
	if err != nil {
		return nil, err
	}
	csrfSecret, err := resolveCSRFSecret(cfg.Server, log.Logger)
	if err != nil {
		return nil, err
	}
	if a.engine, err = newEngine(cfg, log.Logger); err != nil {
		return nil, err
	}

	if err := RegisterRoutes(a.engine, &RouteDeps{
		Modules:       modules,
		APIMiddleware: apiMiddleware(cfg.Server.RateLimit),
		DB:            a.db,
		Mode:          cfg.Server.Mode,
		CSRFSecret:    csrfSecret,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	ok = true
	return a, nil
}

// newEngine builds the gin engine with the global middleware chain and the
// template renderer. Debug mode reads templates from disk on every request.
func newEngine(cfg *config.Config, log *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.Logger(log),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
		middleware.Timeout(requestTimeout(cfg.Server.Timeout)),
	)

	debug := cfg.Server.Mode == gin.DebugMode
	var fsys fs.FS = web.EmbeddedFS
	if debug {
		var err error
		if fsys, err = resolveDebugWebFS(); err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer
	return engine, nil
}

// apiMiddleware returns the handlers placed in front of /api/v1.
func apiMiddleware(rl config.RateLimitConfig) []gin.HandlerFunc {
	if !rl.Enabled {
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(middleware.NewRateLimiter(rl.RPS, rl.Burst))}
}

// resolveCSRFSecret returns the configured secret. Outside release mode a
// missing or placeholder secret is replaced by a random one, so admin forms
// stop validating after a restart.
func resolveCSRFSecret(srv config.ServerConfig, log *slog.Logger) (string, error) {
	secret := strings.TrimSpace(srv.CSRFSecret)
	release := srv.Mode == gin.ReleaseMode

	if !isPlaceholderCSRFSecret(secret) {
		if release {
			if err := validateReleaseCSRFSecret(secret); err != nil {
				return "", err
			}
		}
		return secret, nil
	}
	if release {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	log.Warn("csrf_secret not set, using a random secret until restart")
	return hex.EncodeToString(b), nil
}

var placeholderCSRFSecrets = []string{
	"",
	"change-me-to-a-random-secret",
	"change-me-in-env",
	"change-me-csrf-secret",
}

func isPlaceholderCSRFSecret(secret string) bool {
	return slices.Contains(placeholderCSRFSecrets, strings.ToLower(strings.TrimSpace(secret)))
}

func validateReleaseCSRFSecret(secret string) error {
	if len(secret) < 32 {
		return errors.New("csrf_secret must be at least 32 characters in release mode")
	}
	if config.CountSecretClasses(secret) < 3 {
		return errors.New("csrf_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	return nil
}

// requestTimeout parses server.timeout. Config validation has already
// rejected malformed values; an empty value disables the deadline.
func requestTimeout(s string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d
}

// resolveCORSConfig applies server.cors over the defaults. Without a
// configured origin list, debug mode admits any origin and release mode
// admits none. Credentials are never combined with a wildcard origin.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		out.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		out.AllowHeaders = cfg.AllowHeaders
	}
	if d, err := time.ParseDuration(cfg.MaxAge); err == nil && d > 0 {
		out.MaxAge = d
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		out.AllowOrigins = cfg.AllowOrigins
		out.AllowCredentials = cfg.AllowCredentials && !slices.Contains(cfg.AllowOrigins, "*")
	case mode == gin.ReleaseMode:
		out.AllowOrigins = []string{}
	}
	return out
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// resolveDebugWebFS finds web/ next to the source tree, then next to the
// binary.
func resolveDebugWebFS() (fs.FS, error) {
	var candidates []string
	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "web"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "web"))
	}

	for _, dir := range candidates {
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			return os.DirFS(filepath.Clean(dir)), nil
		}
	}
	return nil, errors.New("debug web directory not found")
}

// Run serves HTTP until SIGINT or SIGTERM, then drains requests for up to
// shutdownGrace and closes the database and logger. A listener failure is
// returned after the same cleanup.
func (a *App) Run() error {
	if a == nil || a.cfg == nil || a.engine == nil {
		return errors.New("app is not initialized")
	}
	log := a.log()

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
		cancel()
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped")
	a.close()
	return runErr
}

// close releases the database pool, then the logger.
func (a *App) close() {
	log := a.log()
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
