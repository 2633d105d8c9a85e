package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupDatabase opens the database described by cfg. SQLite files are created
// on demand with foreign keys enforced. Timestamps are generated in UTC and
// SQL is logged through logger: every statement at debug level, otherwise
// only slow queries and errors.
func SetupDatabase(cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dir := filepath.Dir(cfg.SQLite.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLite.Path))
	case "postgres":
		dialector = postgres.Open(PostgresDSN(&cfg.Postgres))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := resolvePool(cfg.Pool)
	if err == nil {
		err = pool.apply(db)
	}
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.maxIdle),
		slog.Int("max_open_conns", pool.maxOpen),
		slog.Duration("conn_max_lifetime", pool.lifetime),
	)

	return db, nil
}

// SQLiteDSN appends the pragmas every connection needs: foreign key
// enforcement, so ON DELETE rules apply, and a busy timeout for concurrent
// writers. Existing query parameters on path are kept.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewGormLogger returns a gorm logger that writes through logger.
func NewGormLogger(logger *slog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		level = gormlogger.Info
	}
	return gormlogger.New(slogWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "gorm"))
}

// poolSettings is PoolConfig with defaults filled in.
type poolSettings struct {
	maxIdle  int
	maxOpen  int
	lifetime time.Duration
}

func resolvePool(pc PoolConfig) (poolSettings, error) {
	ps := poolSettings{maxIdle: 10, maxOpen: 100, lifetime: time.Hour}
	if pc.MaxIdleConns > 0 {
		ps.maxIdle = pc.MaxIdleConns
	}
	if pc.MaxOpenConns > 0 {
		ps.maxOpen = pc.MaxOpenConns
	}
	if v := strings.TrimSpace(pc.ConnMaxLifetime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ps, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", pc.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return ps, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", pc.ConnMaxLifetime)
		}
		ps.lifetime = d
	}
	return ps, nil
}

func (ps poolSettings) apply(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(ps.maxIdle)
	sqlDB.SetMaxOpenConns(ps.maxOpen)
	sqlDB.SetConnMaxLifetime(ps.lifetime)
	return nil
}

// PostgresDSN builds a postgres:// URL from cfg. The migration runner and
// the gorm dialector share it.
func PostgresDSN(cfg *PostgresConfig) string {
	if cfg == nil {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	query := url.Values{}
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}
