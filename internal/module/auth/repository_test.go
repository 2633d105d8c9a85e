package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/testutil"
)

func TestStaffRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository(testutil.NewSQLiteDB(t))

	staff := &domain.StaffUser{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, repo.Create(ctx, staff))
	require.NotZero(t, staff.ID)

	got, err := repo.GetByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, staff.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "bob@example.com")
	assert.True(t, domain.IsNotFound(err))

	dup := &domain.StaffUser{Name: "Alice 2", Email: "alice@example.com", PasswordHash: "y"}
	assert.True(t, domain.IsAlreadyExists(repo.Create(ctx, dup)))

	byID, err := repo.GetByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	tokens, err := NewTokenIssuer(testSecret, "myproject", time.Hour)
	require.NoError(t, err)
	svc := NewService(tokens, NewStaffRepository(testutil.NewSQLiteDB(t)))

	staff, err := svc.CreateStaff(ctx, "Admin", "admin@example.com", "password123")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "Admin@Example.com", "password123")
	require.NoError(t, err)

	id, err := svc.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, id)
}
