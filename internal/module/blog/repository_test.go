package blog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/testutil"
)

type fixture struct {
	db         *gorm.DB
	repo       domain.PostRepository
	author     *domain.User
	categories []domain.Category
	tags       []domain.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	f := &fixture{db: db, repo: NewPostRepository(db), author: &domain.User{Name: "Ada"}}
	require.NoError(t, db.Create(f.author).Error)

	f.categories = []domain.Category{{Name: "Go", Slug: "go"}, {Name: "Databases", Slug: "db"}}
	require.NoError(t, db.Create(&f.categories).Error)
	f.tags = []domain.Tag{{Name: "orm", Slug: "orm"}, {Name: "sql", Slug: "sql"}}
	require.NoError(t, db.Create(&f.tags).Error)
	return f
}

func (f *fixture) post(t *testing.T, title string, createdAt time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{Title: title, PublishedDate: domain.Date(createdAt), AuthorID: f.author.ID}
	require.NoError(t, f.repo.SaveWithLinks(context.Background(), p, nil, nil))
	require.NoError(t, f.db.Model(p).UpdateColumn("created_at", createdAt).Error)
	return p
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

func titles(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostRepository_SaveWithLinks_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &domain.Post{Title: "Hello", Content: "first", PublishedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AuthorID: f.author.ID}
	err := f.repo.SaveWithLinks(ctx, p, []uint{f.categories[1].ID, f.categories[0].ID, f.categories[0].ID}, []uint{f.tags[0].ID})
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	got, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Ada", got.Author.Name)
	assert.Len(t, got.Categories, 2)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "orm", got.Tags[0].Slug)
}

func TestPostRepository_SaveWithLinks_ReplacesLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &domain.Post{Title: "Hello", PublishedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AuthorID: f.author.ID}
	require.NoError(t, f.repo.SaveWithLinks(ctx, p, []uint{f.categories[0].ID}, []uint{f.tags[0].ID, f.tags[1].ID}))

	p.Title = "Hello again"
	require.NoError(t, f.repo.SaveWithLinks(ctx, p, []uint{f.categories[1].ID}, nil))

	got, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Title)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "db", got.Categories[0].Slug)
	assert.Empty(t, got.Tags)
	assert.EqualValues(t, 2, f.count(t, "tags"), "replacing links must not delete tags")
}

func TestPostRepository_SaveWithLinks_UnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &domain.Post{Title: "Hello", PublishedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AuthorID: f.author.ID}
	err := f.repo.SaveWithLinks(ctx, p, []uint{f.categories[0].ID, 999}, nil)
	assert.True(t, domain.IsValidation(err), "got %v", err)
	assert.Zero(t, f.count(t, "posts"), "nothing is written when a link is unknown")

	err = f.repo.SaveWithLinks(ctx, p, nil, []uint{404})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestPostRepository_SaveWithLinks_MissingPost(t *testing.T) {
	f := newFixture(t)

	p := &domain.Post{BaseModel: domain.BaseModel{ID: 77}, Title: "ghost", PublishedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AuthorID: f.author.ID}
	err := f.repo.SaveWithLinks(context.Background(), p, nil, nil)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestPostRepository_DeleteRemovesLinksOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &domain.Post{Title: "Hello", PublishedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AuthorID: f.author.ID}
	require.NoError(t, f.repo.SaveWithLinks(ctx, p, []uint{f.categories[0].ID}, []uint{f.tags[0].ID}))

	require.NoError(t, f.repo.Delete(ctx, p.ID))

	assert.Zero(t, f.count(t, "post_categories"))
	assert.Zero(t, f.count(t, "post_tags"))
	assert.EqualValues(t, 2, f.count(t, "categories"))
	assert.EqualValues(t, 2, f.count(t, "tags"))
}

func TestPostRepository_ListCreatedSince(t *testing.T) {
	f := newFixture(t)
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f.post(t, "before", since.Add(-time.Second))
	f.post(t, "at boundary", since)
	f.post(t, "after", since.Add(48*time.Hour))

	page, err := f.repo.ListCreatedSince(context.Background(), since, domain.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalItems)
	assert.Equal(t, []string{"after", "at boundary"}, titles(page.Items), "newest first")
}
