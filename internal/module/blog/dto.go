package blog

import (
	"github.com/simp-lee/myproject/internal/domain"
)

// PostRequest is the body of POST and PUT /api/v1/posts.
type PostRequest struct {
	Title         string `json:"title" form:"title" binding:"required,max=50"`
	Content       string `json:"content" form:"content" binding:"max=200"`
	PublishedDate string `json:"published_date" form:"published_date" binding:"required,datetime=2006-01-02"`
	AuthorID      uint   `json:"author_id" form:"author_id" binding:"required"`
	CategoryIDs   []uint `json:"category_ids" form:"category_ids"`
	TagIDs        []uint `json:"tag_ids" form:"tag_ids"`
}

// Input converts the request into service input. The date has already been
// checked by the datetime binding rule.
func (r PostRequest) Input() (domain.PostInput, error) {
	published, err := domain.ParseDate(r.PublishedDate)
	if err != nil {
		return domain.PostInput{}, domain.NewAppError(domain.CodeValidation, "published_date must be YYYY-MM-DD", err)
	}
	return domain.PostInput{
		Title:         r.Title,
		Content:       r.Content,
		PublishedDate: published,
		AuthorID:      r.AuthorID,
		CategoryIDs:   r.CategoryIDs,
		TagIDs:        r.TagIDs,
	}, nil
}
