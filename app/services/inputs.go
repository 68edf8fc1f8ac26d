package services

import (
	"strings"

	"inkpost/app/models"
)

type RegisterInput struct {
	Username string `json:"username" validate:"notblank,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"min=6"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// PostInput is the body of create and update. A zero CategoryID is rejected
// on create and means "keep the current category" on update.
type PostInput struct {
	Title      string `json:"title" validate:"notblank,max=200"`
	Content    string `json:"content" validate:"notblank"`
	CategoryID int64  `json:"category" validate:"gte=0"`
}

// ListQuery selects a page of posts. Out of range values are normalized by
// PostService.List rather than rejected.
type ListQuery struct {
	CategoryID int64
	Sort       string
	Page       int
	Limit      int
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []*models.PostView `json:"posts"`
	Total int                `json:"total"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
