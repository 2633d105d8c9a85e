package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// staffRepository implements domain.StaffRepository using GORM.
type staffRepository struct {
	*store.Store[domain.StaffUser]
	db *gorm.DB
}

// NewStaffRepository creates a new StaffRepository backed by the given GORM database.
func NewStaffRepository(db *gorm.DB) domain.StaffRepository {
	return &staffRepository{Store: store.New[domain.StaffUser](db, store.Options{}), db: db}
}

// GetByEmail retrieves a staff account by email, ignoring case.
func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&staff).Error
	if err != nil {
		return nil, store.MapError(err)
	}
	return &staff, nil
}
