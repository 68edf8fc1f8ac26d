package services

import (
	"context"
	"errors"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// DefaultCategories are created by the seed command.
var DefaultCategories = []string{
	"JavaScript",
	"Python",
	"DevOps",
	"Frontend",
	"Backend",
	"Testing",
	"Career",
	"Tools",
	"Databases",
	"Cloud",
}

// CategoryService handles business logic for categories
type CategoryService struct {
	categories repositories.CategoryRepository
	timeout    time.Duration
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories repositories.CategoryRepository, timeout time.Duration) *CategoryService {
	return &CategoryService{categories: categories, timeout: timeout}
}

// List returns all categories in creation order
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name}
	category.BeforeCreate()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, ErrDuplicateCategory
		}
		return nil, storageError("create category", err)
	}
	return category, nil
}

// Seed creates every name that does not exist yet and reports how many were
// created.
func (s *CategoryService) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := s.Create(ctx, CategoryInput{Name: name})
		if errors.Is(err, ErrDuplicateCategory) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
