package blog

import (
	"context"
	"log/slog"
	"time"

	"github.com/simp-lee/pagination"

	"github.com/simp-lee/myproject/internal/domain"
)

// RecentWindow is how far back RecentPosts looks.
const RecentWindow = 30 * 24 * time.Hour

// blogService implements domain.BlogService.
type blogService struct {
	posts domain.PostRepository
	users domain.Repository[domain.User]
	now   func() time.Time
}

// Option configures the blog service.
type Option func(*blogService)

// WithClock replaces time.Now as the reference for RecentPosts.
func WithClock(now func() time.Time) Option {
	return func(s *blogService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a BlogService.
func NewService(posts domain.PostRepository, users domain.Repository[domain.User], opts ...Option) domain.BlogService {
	s := &blogService{posts: posts, users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecentPosts lists posts created within the last 30 days. A post created
// exactly 30 days ago is included.
func (s *blogService) RecentPosts(ctx context.Context, req domain.PageRequest) (*pagination.Pagination[domain.Post], error) {
	since := s.now().UTC().Add(-RecentWindow)
	return s.posts.ListCreatedSince(ctx, since, req)
}

// CreatePost creates a post and links it to the given categories and tags.
func (s *blogService) CreatePost(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	if err := s.checkAuthor(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:         in.Title,
		Content:       in.Content,
		PublishedDate: domain.Date(in.PublishedDate),
		AuthorID:      in.AuthorID,
	}
	if err := s.posts.SaveWithLinks(ctx, post, in.CategoryIDs, in.TagIDs); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", post.AuthorID)
	return s.posts.GetByID(ctx, post.ID)
}

// GetPost returns a post with its author, categories and tags.
func (s *blogService) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// UpdatePost overwrites the writable fields of a post and its links.
func (s *blogService) UpdatePost(ctx context.Context, id uint, in domain.PostInput) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.PublishedDate = domain.Date(in.PublishedDate)
	post.AuthorID = in.AuthorID
	post.Author = nil
	if err := s.posts.SaveWithLinks(ctx, post, in.CategoryIDs, in.TagIDs); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "post updated", "post_id", id)
	return s.posts.GetByID(ctx, id)
}

// DeletePost removes a post. Its category and tag links go with it.
func (s *blogService) DeletePost(ctx context.Context, id uint) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}

// DeleteUser removes a user together with their posts and profile.
func (s *blogService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *blogService) checkAuthor(ctx context.Context, authorID uint) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "author does not exist", nil)
		}
		return err
	}
	return nil
}
