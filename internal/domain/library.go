package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalogue entry with a list price.
type Book struct {
	BaseModel
	Title         string          `gorm:"size:100;not null" json:"title" binding:"required,max=100"`
	Author        string          `gorm:"size:50;not null" json:"author" binding:"required,max=50"`
	PublishedDate time.Time       `gorm:"type:date;not null" json:"published_date" binding:"required"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Validate checks constraints the binding tags cannot express.
func (b *Book) Validate() error {
	return validatePrice(b.Price)
}

// Boook is the lending-library variant of a book. A copy may be borrowed by
// a member; removing the member returns the copy to the shelf.
type Boook struct {
	BaseModel
	Title           string    `gorm:"size:100;not null" json:"title" binding:"required,max=100"`
	Author          string    `gorm:"size:50;not null" json:"author" binding:"required,max=50"`
	PublicationDate time.Time `gorm:"type:date;not null" json:"publication_date" binding:"required"`
	ISBN            string    `gorm:"column:isbn;size:13;not null;uniqueIndex" json:"isbn" binding:"required,isbn"`
	BorrowedByID    *uint     `json:"borrowed_by_id"`
	BorrowedBy      *Member   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"borrowed_by,omitempty" binding:"-"`
}

// Member is a library member who can borrow boooks.
type Member struct {
	BaseModel
	Name           string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Email          string    `gorm:"size:254;not null;uniqueIndex" json:"email" binding:"required,email,max=254"`
	MembershipDate time.Time `gorm:"type:date;not null" json:"membership_date" binding:"required"`
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return NewAppError(CodeValidation, "price must not be negative", nil)
	}
	if p.Exponent() < -2 && !p.Equal(p.Round(2)) {
		return NewAppError(CodeValidation, "price must have at most 2 decimal places", nil)
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return NewAppError(CodeValidation, "price must have at most 8 integer digits", nil)
	}
	return nil
}

// maxPrice is the first value that no longer fits a decimal(10,2) column.
var maxPrice = decimal.New(1, 8)
