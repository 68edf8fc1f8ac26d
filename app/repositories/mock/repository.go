package mock

import (
	"context"
	"sort"
	"sync"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

type UserRepository struct {
	users  map[int64]*models.Identity
	nextID int64
	mutex  sync.RWMutex
}

type CategoryRepository struct {
	categories map[int64]*models.Category
	nextID     int64
	mutex      sync.RWMutex
}

type PostRepository struct {
	posts  map[int64]*models.Post
	nextID int64
	mutex  sync.RWMutex

	// Err, when set, is returned by every method. Used to simulate storage
	// failures.
	Err error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int64]*models.Identity),
		nextID: 1,
	}
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[int64]*models.Category),
		nextID:     1,
	}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int64]*models.Post),
		nextID: 1,
	}
}

// UserRepository implementation
func (m *UserRepository) Create(ctx context.Context, user *models.Identity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return repositories.ErrDuplicateUsername
		}
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*models.Identity, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// Delete removes an identity, leaving its posts behind.
func (m *UserRepository) Delete(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.users, id)
}

// CategoryRepository implementation
func (m *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.categories {
		if existing.Name == category.Name {
			return repositories.ErrDuplicateName
		}
	}
	category.ID = m.nextID
	m.nextID++
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	category, exists := m.categories[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *category
	return &found, nil
}

func (m *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	categories := []*models.Category{}
	for id := int64(1); id < m.nextID; id++ {
		if category, exists := m.categories[id]; exists {
			found := *category
			categories = append(categories, &found)
		}
	}
	return categories, nil
}

// Delete removes a category out-of-band, leaving posts that reference it.
func (m *CategoryRepository) Delete(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.categories, id)
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.posts {
		if existing.Slug == post.Slug {
			return repositories.ErrDuplicateSlug
		}
	}
	post.ID = m.nextID
	m.nextID++
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *post
	return &found, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	for id, other := range m.posts {
		if id != post.ID && other.Slug == post.Slug {
			return repositories.ErrDuplicateSlug
		}
	}
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List(ctx context.Context, q repositories.PostQuery) ([]*models.Post, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}
	var matched []*models.Post
	for _, post := range m.posts {
		if q.CategoryID > 0 && post.CategoryID != q.CategoryID {
			continue
		}
		found := *post
		matched = append(matched, &found)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.Descending {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if q.Descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	total := len(matched)
	if q.Offset >= total {
		return []*models.Post{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func (m *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, post := range m.posts {
		if post.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

// Clear removes every post.
func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int64]*models.Post)
	m.nextID = 1
}
