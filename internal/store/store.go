// Package store implements domain.Repository for any GORM model.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/simp-lee/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/pkg"
)

// Options restricts which columns a list query may touch. Unlisted columns in
// a request are ignored.
type Options struct {
	SortFields   []string
	FilterFields []string
	SearchFields []string
	Preload      []string
}

// Store is a GORM-backed domain.Repository for model T.
type Store[T any] struct {
	db    *gorm.DB
	opts  Options
	label string
}

var _ domain.Repository[domain.Book] = (*Store[domain.Book])(nil)

// New returns a Store for T. Error messages name the model by its type,
// for example "order item not found".
func New[T any](db *gorm.DB, opts Options) *Store[T] {
	return &Store[T]{db: db, opts: opts, label: modelLabel[T](db)}
}

// DB returns the underlying handle so callers can run custom queries.
func (s *Store[T]) DB() *gorm.DB {
	return s.db
}

// Create inserts entity. Associations are not written.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
	return s.mapError(err)
}

// GetByID loads one record with the configured preloads.
func (s *Store[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := s.preload(s.db.WithContext(ctx)).First(&entity, id).Error; err != nil {
		return nil, s.mapError(err)
	}
	return &entity, nil
}

// List returns one page of records matching req.
func (s *Store[T]) List(ctx context.Context, req domain.PageRequest) (*pagination.Pagination[T], error) {
	return s.ListWhere(ctx, req)
}

// ListWhere is List narrowed by extra scopes applied before counting. A page
// past the end is clamped to the last page.
func (s *Store[T]) ListWhere(ctx context.Context, req domain.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (*pagination.Pagination[T], error) {
	query := func(ctx context.Context) *gorm.DB {
		return s.db.WithContext(ctx).Model(new(T)).
			Scopes(scopes...).
			Scopes(
				pkg.Filter(req, s.opts.FilterFields),
				pkg.Search(req, s.opts.SearchFields),
			)
	}

	page, size := pageBounds(req)
	p := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](size),
		pagination.WithItemTotalCallback[T](func(ctx context.Context) (int64, error) {
			var total int64
			err := query(ctx).Count(&total).Error
			return total, err
		}),
		pagination.WithSliceCallback[T](func(ctx context.Context, offset, limit int) ([]T, error) {
			var items []T
			err := s.preload(query(ctx)).
				Scopes(pkg.Sort(req, s.opts.SortFields)).
				Offset(offset).Limit(limit).
				Find(&items).Error
			return items, err
		}),
	)

	result, err := p.Paginate(ctx, page)
	if err != nil {
		return nil, s.mapError(err)
	}
	return result, nil
}

// pageBounds replaces a missing page or page size with the first page of
// DefaultPageSize items.
func pageBounds(req domain.PageRequest) (page, size int) {
	page, size = req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}

// DefaultPageSize is used when a request names no page size.
const DefaultPageSize = 20

// Update writes every column of entity except created_at. The record must
// already exist; unlike Save, a missing row is not inserted.
func (s *Store[T]) Update(ctx context.Context, entity *T) error {
	result := s.db.WithContext(ctx).Model(entity).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(entity)
	if result.Error != nil {
		return s.mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notFound()
	}
	return nil
}

// Delete removes the record with id. Dependent rows follow the foreign key
// policy declared on the schema.
func (s *Store[T]) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return s.mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notFound()
	}
	return nil
}

func (s *Store[T]) preload(db *gorm.DB) *gorm.DB {
	for _, p := range s.opts.Preload {
		db = db.Preload(p)
	}
	return db
}

func (s *Store[T]) notFound() error {
	return domain.NewAppError(domain.CodeNotFound, s.label+" not found", nil)
}

func (s *Store[T]) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.notFound()
	}
	return MapError(err)
}

// MapError converts GORM and driver errors to domain errors. Unique
// violations become AlreadyExists and foreign key violations become
// Validation, since both are caused by client input.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err):
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyError(err):
		return domain.NewAppError(domain.CodeValidation, "referenced record does not exist", err)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return domain.NewAppError(domain.CodeInternal, "request canceled", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// Postgres SQLSTATE codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isDuplicateKeyError matches driver errors for dialectors that do not
// translate them.
func isDuplicateKeyError(err error) bool {
	if code, ok := pgCode(err); ok {
		return code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func isForeignKeyError(err error) bool {
	if code, ok := pgCode(err); ok {
		return code == pgForeignKeyViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "sqlstate 23503")
}

func pgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

func modelLabel[T any](db *gorm.DB) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return "record"
	}
	return Label(stmt.Schema.Name)
}

// Label turns a Go type name into lower-case words: OrderItem is
// "order item".
func Label(typeName string) string {
	var b strings.Builder
	for i, r := range typeName {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
