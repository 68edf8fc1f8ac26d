package repositories

import (
	"context"

	"inkpost/app/models"
)

// UserRepository defines the interface for identity data access
type UserRepository interface {
	Create(ctx context.Context, user *models.Identity) error
	GetByID(ctx context.Context, id int64) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// PostQuery selects a page of posts. A zero CategoryID means no filter.
type PostQuery struct {
	CategoryID int64
	Descending bool
	Limit      int
	Offset     int
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// List returns the requested page ordered by creation time (ties broken
	// by id) and the number of posts matching the filter.
	List(ctx context.Context, q PostQuery) ([]*models.Post, int, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
}
