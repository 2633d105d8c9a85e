package domain

import "context"

// StaffUser is an account allowed to use the admin site.
type StaffUser struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}

// StaffRepository defines the data access interface for staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, staff *StaffUser) error
	GetByID(ctx context.Context, id uint) (*StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*StaffUser, error)
}
