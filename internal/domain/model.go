package domain

import (
	"context"
	"time"

	"github.com/simp-lee/pagination"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, sorting, searching, and filtering parameters.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Search   string
	Filter   map[string]string
}

// Repository is the data access contract shared by every model.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, req PageRequest) (*pagination.Pagination[T], error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
}

// Date truncates t to midnight UTC, the canonical form of date-only columns.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a date-only value.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateLayout is the wire format of date-only fields.
const DateLayout = "2006-01-02"

// Models returns every persisted model in foreign-key dependency order.
func Models() []any {
	return []any{
		&Member{},
		&Book{},
		&Boook{},
		&User{},
		&Category{},
		&Tag{},
		&Post{},
		&Profile{},
		&Product{},
		&Task{},
		&Order{},
		&OrderItem{},
		&StaffUser{},
	}
}
