package blog

import (
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// PostAdmin lists posts newest first with creation and publication filters.
var PostAdmin = admin.Options{
	Name:         "posts",
	Verbose:      "Post",
	ListDisplay:  []string{"title", "published_date", "created_at"},
	SearchFields: []string{"title"},
	ListFilter:   []string{"created_at", "published_date"},
}

var (
	// UserAdmin lists blog authors.
	UserAdmin = admin.Options{Name: "users", Verbose: "User", ListDisplay: []string{"name", "created_at"}, SearchFields: []string{"name"}}
	// ProfileAdmin lists author profiles.
	ProfileAdmin = admin.Options{Name: "profiles", Verbose: "Profile", ListDisplay: []string{"user_id", "phone_number"}, SearchFields: []string{"phone_number", "address"}}
	// CategoryAdmin lists post categories.
	CategoryAdmin = admin.Options{Name: "categories", Verbose: "Category", VerbosePlural: "Categories", ListDisplay: []string{"name", "slug"}, SearchFields: []string{"name", "slug"}}
	// TagAdmin lists post tags.
	TagAdmin = admin.Options{Name: "tags", Verbose: "Tag", ListDisplay: []string{"name", "slug"}, SearchFields: []string{"name", "slug"}}
)

// RegisterAdmin adds users, posts, profiles, categories and tags to site.
// Posts search, filter and sort on the admin's own columns and load their
// author and links for display.
func RegisterAdmin(site *admin.Site, db *gorm.DB) {
	admin.Register[domain.User](site, db, store.New[domain.User](db, UserAdmin.StoreOptions()), UserAdmin)
	admin.Register[domain.Post](site, db, store.New[domain.Post](db, postAdminStoreOptions()), PostAdmin)
	admin.Register[domain.Profile](site, db, store.New[domain.Profile](db, ProfileAdmin.StoreOptions()), ProfileAdmin)
	admin.Register[domain.Category](site, db, store.New[domain.Category](db, CategoryAdmin.StoreOptions()), CategoryAdmin)
	admin.Register[domain.Tag](site, db, store.New[domain.Tag](db, TagAdmin.StoreOptions()), TagAdmin)
}

func postAdminStoreOptions() store.Options {
	opts := PostAdmin.StoreOptions()
	opts.Preload = PostListOptions.Preload
	return opts
}
