package blog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/simp-lee/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/pkg"
	"github.com/simp-lee/myproject/internal/store"
)

// PostListOptions are the columns a post list may sort, filter or search on.
var PostListOptions = store.Options{
	SortFields:   []string{"id", "title", "published_date", "created_at"},
	FilterFields: []string{"author_id", "published_date", "created_at"},
	SearchFields: []string{"title", "content"},
	Preload:      []string{"Author", "Categories", "Tags"},
}

// postRepository implements domain.PostRepository on top of the generic store.
type postRepository struct {
	*store.Store[domain.Post]
	db *gorm.DB
}

// NewPostRepository creates a PostRepository backed by db.
func NewPostRepository(db *gorm.DB) domain.PostRepository {
	return &postRepository{Store: store.New[domain.Post](db, PostListOptions), db: db}
}

// ListCreatedSince returns posts created at or after since, newest first
// unless req names another order.
func (r *postRepository) ListCreatedSince(ctx context.Context, since time.Time, req domain.PageRequest) (*pagination.Pagination[domain.Post], error) {
	if req.Sort == "" {
		req.Sort = "created_at:desc"
	}
	return r.ListWhere(ctx, req, func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", since.UTC())
	})
}

// SaveWithLinks writes post and replaces its category and tag links. Unknown
// category or tag ids are rejected before anything is written.
func (r *postRepository) SaveWithLinks(ctx context.Context, post *domain.Post, categoryIDs, tagIDs []uint) error {
	return pkg.WithTxContext(ctx, r.db, func(tx *gorm.DB) error {
		categories, err := findAll[domain.Category](tx, categoryIDs, "category")
		if err != nil {
			return err
		}
		tags, err := findAll[domain.Tag](tx, tagIDs, "tag")
		if err != nil {
			return err
		}

		if post.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
				return store.MapError(err)
			}
		} else {
			result := tx.Model(post).
				Select("*").
				Omit("id", "created_at", clause.Associations).
				Updates(post)
			if result.Error != nil {
				return store.MapError(result.Error)
			}
			if result.RowsAffected == 0 {
				return domain.NewAppError(domain.CodeNotFound, "post not found", nil)
			}
		}

		if err := tx.Model(post).Association("Categories").Replace(categories); err != nil {
			return store.MapError(err)
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return store.MapError(err)
		}
		post.Categories, post.Tags = categories, tags
		return nil
	})
}

// findAll loads the rows with ids and fails if any id does not exist.
func findAll[T any](tx *gorm.DB, ids []uint, label string) ([]T, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	rows := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}
	if err := tx.Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, store.MapError(err)
	}
	if len(rows) != len(ids) {
		return nil, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("unknown %s id in %v", label, ids), nil)
	}
	return rows, nil
}
