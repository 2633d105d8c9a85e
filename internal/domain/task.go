package domain

import "time"

// Task is a to-do item. Status is true once the task is done.
type Task struct {
	BaseModel
	Title       string    `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"type:date;not null" json:"due_date" binding:"required"`
	Status      bool      `gorm:"not null" json:"status"`
}
