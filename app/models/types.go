package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Identity represents a registered user able to authenticate and author posts.
type Identity struct {
	ID           int64     `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,max=50"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"passwordHash" validate:"required"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicIdentity is the identity as returned to API callers.
type PublicIdentity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is a named grouping for posts.
type Category struct {
	ID        int64     `json:"id" validate:"gte=0"`
	Name      string    `json:"name" validate:"required,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post represents a blog post as stored. Author and category are weak
// references resolved at read time.
type Post struct {
	ID         int64     `json:"id" validate:"gte=0"`
	Title      string    `json:"title" validate:"required,max=200"`
	Slug       string    `json:"slug" validate:"required"`
	Content    string    `json:"content" validate:"required"`
	AuthorID   int64     `json:"authorId" validate:"gt=0"`
	CategoryID int64     `json:"categoryId" validate:"gte=0"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AuthorRef is the populated author of a post.
type AuthorRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CategoryRef is the populated category of a post.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostView is a post with its author and category resolved for display.
type PostView struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Slug      string       `json:"slug"`
	Content   string       `json:"content"`
	Author    AuthorRef    `json:"author"`
	Category  *CategoryRef `json:"category"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
