// Package migration brings the database schema up to date. SQLite schemas are
// derived from the models; PostgreSQL schemas are versioned SQL files applied
// with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/domain"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// Status describes the schema state of a database.
type Status struct {
	Driver  string   `json:"driver"`
	Version uint     `json:"version"`
	Dirty   bool     `json:"dirty"`
	Missing []string `json:"missing_tables"`
}

// Run migrates db to the latest schema for driver.
func Run(ctx context.Context, db *gorm.DB, driver string) error {
	switch driver {
	case "sqlite":
		if err := db.WithContext(ctx).AutoMigrate(domain.Models()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		slog.InfoContext(ctx, "schema migrated", slog.String("driver", driver))
		return nil
	case "postgres":
		return runPostgres(ctx, db)
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func runPostgres(ctx context.Context, db *gorm.DB) error {
	m, err := newPostgresMigrator(db)
	if err != nil {
		return err
	}
	defer closeMigrator(ctx, m)

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.InfoContext(ctx, "schema up to date", slog.String("driver", "postgres"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	slog.InfoContext(ctx, "schema migrated",
		slog.String("driver", "postgres"),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// GetStatus reports the applied version (PostgreSQL only) and the model tables
// missing from db.
func GetStatus(ctx context.Context, db *gorm.DB, driver string) (*Status, error) {
	st := &Status{Driver: driver}

	migrator := db.WithContext(ctx).Migrator()
	for _, model := range domain.Models() {
		if !migrator.HasTable(model) {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(model); err != nil {
				return nil, fmt.Errorf("parse model: %w", err)
			}
			st.Missing = append(st.Missing, stmt.Schema.Table)
		}
	}

	switch driver {
	case "sqlite":
		return st, nil
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	m, err := newPostgresMigrator(db)
	if err != nil {
		return nil, err
	}
	defer closeMigrator(ctx, m)

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migration version: %w", err)
	}
	st.Version, st.Dirty = version, dirty
	return st, nil
}

// newPostgresMigrator builds a migrator over the embedded SQL files. It dials
// its own connection from the DSN db was opened with, so closing the migrator
// leaves db's pool untouched.
func newPostgresMigrator(db *gorm.DB) (*migrate.Migrate, error) {
	dsn, err := postgresDSN(db)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(postgresFS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	drv, err := migratepg.WithInstance(conn, &migratepg.Config{})
	if err != nil {
		src.Close()
		conn.Close()
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		src.Close()
		drv.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// closeMigrator releases the source and the migrator's own connection.
func closeMigrator(ctx context.Context, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.WarnContext(ctx, "close migrator", slog.Any("error", err))
	}
}

// postgresDSN returns the DSN db was opened with.
func postgresDSN(db *gorm.DB) (string, error) {
	d, ok := db.Dialector.(*gormpostgres.Dialector)
	if !ok || d.Config == nil || d.DSN == "" {
		return "", errors.New("postgres migrations need a database opened from a DSN")
	}
	return d.DSN, nil
}
