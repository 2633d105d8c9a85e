package blog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/testutil"
)

func TestRegisterAdmin_UserDeleteCascades(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	site := admin.NewSite()
	RegisterAdmin(site, db)
	r := gin.New()
	site.RegisterRoutes(r.Group("/api/v1"), nil)

	var names []string
	for _, m := range site.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"users", "posts", "profiles", "categories", "tags"}, names)

	user := domain.User{Name: "ann"}
	require.NoError(t, db.Create(&user).Error)
	cat := domain.Category{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&cat).Error)
	post := domain.Post{Title: "hello", PublishedDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), AuthorID: user.ID, Categories: []domain.Category{cat}}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&domain.Profile{UserID: user.ID, PhoneNumber: "555"}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/posts?q=hell", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"ann"`, "author is preloaded")

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/"+strconv.FormatUint(uint64(user.ID), 10), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var posts, profiles, links int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&domain.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Table("post_categories").Count(&links).Error)
	assert.Zero(t, posts)
	assert.Zero(t, profiles)
	assert.Zero(t, links)

	var cats int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&cats).Error)
	assert.Equal(t, int64(1), cats, "categories survive")
}

func TestRegisterAdmin_PostSearchUsesAdminFields(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	site := admin.NewSite()
	RegisterAdmin(site, db)
	r := gin.New()
	site.RegisterRoutes(r.Group("/api/v1"), nil)

	user := domain.User{Name: "ann"}
	require.NoError(t, db.Create(&user).Error)
	post := domain.Post{Title: "hello", Content: "a needle in the body", PublishedDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), AuthorID: user.ID}
	require.NoError(t, db.Create(&post).Error)

	tests := []struct {
		query string
		want  int
	}{
		{"hell", 1},
		{"needle", 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/posts?q="+tt.query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var env struct {
			Data pagination.Pagination[domain.Post] `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Len(t, env.Data.Items, tt.want, "q=%s", tt.query)
		if tt.want > 0 {
			require.NotNil(t, env.Data.Items[0].Author)
			assert.Equal(t, "ann", env.Data.Items[0].Author.Name)
		}
	}
}
