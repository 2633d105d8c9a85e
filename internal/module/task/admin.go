// Package task registers to-do items with the admin site.
package task

import (
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/admin"
	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/store"
)

// TaskAdmin lists tasks with their due date and completion.
var TaskAdmin = admin.Options{
	Name:         "tasks",
	Verbose:      "Task",
	ListDisplay:  []string{"title", "due_date", "status"},
	SearchFields: []string{"title", "description"},
	ListFilter:   []string{"status", "due_date"},
}

// RegisterAdmin adds tasks to site.
func RegisterAdmin(site *admin.Site, db *gorm.DB) {
	admin.Register[domain.Task](site, db, store.New[domain.Task](db, TaskAdmin.StoreOptions()), TaskAdmin)
}
