// Package testutil provides database fixtures shared by repository, service
// and handler tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simp-lee/myproject/internal/config"
	"github.com/simp-lee/myproject/internal/migration"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a migrated SQLite database in a temporary file with
// foreign keys enforced. A file is used instead of :memory: so every pooled
// connection sees the same data.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migration.Run(context.Background(), db, "sqlite"), "migrate sqlite")
	return db
}

// MockDB wraps a GORM postgres database backed by sqlmock.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM database whose queries are
// answered by sqlmock. Expectations are verified on cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "create sqlmock")

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open gorm over sqlmock")

	m := &MockDB{DB: db, Mock: mock, SqlDB: mockDB}
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet database expectations")
		mockDB.Close()
	})
	return m
}
