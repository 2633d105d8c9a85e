// Package library registers the catalogue and lending models with the admin
// site.
package library

import (
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// BookAdmin lists books by title, author and publication date.
var BookAdmin = admin.Options{
	Name:         "books",
	Verbose:      "Book",
	ListDisplay:  []string{"title", "author", "published_date"},
	SearchFields: []string{"title", "author"},
	ListFilter:   []string{"published_date"},
}

// MemberAdmin lists library members.
var MemberAdmin = admin.Options{
	Name:         "members",
	Verbose:      "Member",
	ListDisplay:  []string{"name", "email", "membership_date"},
	SearchFields: []string{"name", "email"},
	ListFilter:   []string{"membership_date"},
}

// BoookAdmin lists lendable copies and who holds them.
var BoookAdmin = admin.Options{
	Name:         "boooks",
	Verbose:      "Boook",
	ListDisplay:  []string{"title", "author", "isbn", "borrowed_by_id"},
	SearchFields: []string{"title", "author", "isbn"},
	ListFilter:   []string{"publication_date", "borrowed_by_id"},
}

// RegisterAdmin adds books, members and boooks to site.
func RegisterAdmin(site *admin.Site, db *gorm.DB) {
	admin.Register[domain.Book](site, db, store.New[domain.Book](db, BookAdmin.StoreOptions()), BookAdmin)
	admin.Register[domain.Member](site, db, store.New[domain.Member](db, MemberAdmin.StoreOptions()), MemberAdmin)
	admin.Register[domain.Boook](site, db, store.New[domain.Boook](db, BoookAdmin.StoreOptions()), BoookAdmin)
}
