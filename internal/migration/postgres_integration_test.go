//go:build integration

package migration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("myproject_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestRun_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, "postgres"))
	require.NoError(t, Run(ctx, db, "postgres"), "second run reports no change")

	st, err := GetStatus(ctx, db, "postgres")
	require.NoError(t, err)
	assert.Equal(t, uint(1), st.Version)
	assert.False(t, st.Dirty)
	assert.Empty(t, st.Missing)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Zero(t, sqlDB.Stats().InUse, "migrations must not hold connections from the app pool")
}

func TestRun_PostgresDeletePolicies(t *testing.T) {
	db := startPostgres(t)
	require.NoError(t, Run(context.Background(), db, "postgres"))

	require.NoError(t, db.Exec(`INSERT INTO members (id, name, email, membership_date) VALUES (1, 'Ada', 'ada@example.com', '2024-01-01')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO boooks (title, author, publication_date, isbn, borrowed_by_id) VALUES ('Dune', 'Herbert', '1965-08-01', '9780441013593', 1)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO users (id, name) VALUES (1, 'sam')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO posts (title, published_date, author_id) VALUES ('hello', '2024-01-01', 1)`).Error)

	require.NoError(t, db.Exec(`DELETE FROM members WHERE id = 1`).Error)
	var borrowed *int64
	require.NoError(t, db.Raw(`SELECT borrowed_by_id FROM boooks`).Scan(&borrowed).Error)
	assert.Nil(t, borrowed)

	require.NoError(t, db.Exec(`DELETE FROM users WHERE id = 1`).Error)
	var posts int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM posts`).Scan(&posts).Error)
	assert.Zero(t, posts)
}
