package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/simp-lee/pagination"
)

// User is a blog author.
type User struct {
	BaseModel
	Name    string   `gorm:"size:45;not null" json:"name" binding:"required,max=45"`
	Posts   []Post   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"posts,omitempty" binding:"-"`
	Profile *Profile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"profile,omitempty" binding:"-"`
}

// Post is a blog entry written by a User and classified by categories and tags.
type Post struct {
	BaseModel
	Title         string     `gorm:"size:50;not null" json:"title" binding:"required,max=50"`
	Content       string     `gorm:"type:text" json:"content" binding:"max=200"`
	PublishedDate time.Time  `gorm:"type:date;not null" json:"published_date" binding:"required"`
	AuthorID      uint       `gorm:"not null;index" json:"author_id" binding:"required"`
	Author        *User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty" binding:"-"`
	Categories    []Category `gorm:"many2many:post_categories;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"categories,omitempty" binding:"-"`
	Tags          []Tag      `gorm:"many2many:post_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tags,omitempty" binding:"-"`
}

// Category groups posts by subject.
type Category struct {
	BaseModel
	Name string `gorm:"size:25;not null" json:"name" binding:"required,max=25"`
	Slug string `gorm:"size:50;not null;uniqueIndex" json:"slug" binding:"required,max=50"`
}

// Validate checks that the slug is URL safe.
func (c *Category) Validate() error {
	return validateSlug(c.Slug)
}

// Tag labels posts across categories.
type Tag struct {
	BaseModel
	Name string `gorm:"size:25;not null" json:"name" binding:"required,max=25"`
	Slug string `gorm:"size:50;not null;uniqueIndex" json:"slug" binding:"required,max=50"`
}

// Validate checks that the slug is URL safe.
func (t *Tag) Validate() error {
	return validateSlug(t.Slug)
}

// Profile holds contact details for exactly one User.
type Profile struct {
	BaseModel
	UserID      uint   `gorm:"not null;uniqueIndex" json:"user_id" binding:"required"`
	User        *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty" binding:"-"`
	PhoneNumber string `gorm:"size:15" json:"phone_number" binding:"omitempty,max=15"`
	Address     string `gorm:"type:text" json:"address"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return NewAppError(CodeValidation, "slug may only contain letters, numbers, underscores or hyphens", nil)
	}
	return nil
}

// PostRepository adds post-specific queries to the generic repository.
type PostRepository interface {
	Repository[Post]
	// ListCreatedSince returns posts with created_at >= since, newest first.
	ListCreatedSince(ctx context.Context, since time.Time, req PageRequest) (*pagination.Pagination[Post], error)
	// SaveWithLinks creates post, or updates it when it has an ID, and
	// replaces its categories and tags in one transaction.
	SaveWithLinks(ctx context.Context, post *Post, categoryIDs, tagIDs []uint) error
}

// BlogService defines the blog operations exposed over HTTP.
type BlogService interface {
	RecentPosts(ctx context.Context, req PageRequest) (*pagination.Pagination[Post], error)
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	UpdatePost(ctx context.Context, id uint, in PostInput) (*Post, error)
	DeletePost(ctx context.Context, id uint) error
	DeleteUser(ctx context.Context, id uint) error
}

// PostInput carries the writable fields of a Post.
type PostInput struct {
	Title         string
	Content       string
	PublishedDate time.Time
	AuthorID      uint
	CategoryIDs   []uint
	TagIDs        []uint
}
