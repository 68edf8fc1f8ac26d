package services

import (
	"context"
	"errors"
	"math"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"

	"github.com/sirupsen/logrus"
)

// EventNewPost is broadcast after a post has been stored.
const EventNewPost = "newPost"

// Broadcaster fans an event out to every connected viewer.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// PostServiceConfig tunes listing and store access.
type PostServiceConfig struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

// PostService handles business logic for blog posts
type PostService struct {
	posts      repositories.PostRepository
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	events     Broadcaster
	log        logrus.FieldLogger
	cfg        PostServiceConfig
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	categories repositories.CategoryRepository,
	events Broadcaster,
	log logrus.FieldLogger,
	cfg PostServiceConfig,
) *PostService {
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	return &PostService{
		posts:      posts,
		users:      users,
		categories: categories,
		events:     events,
		log:        log,
		cfg:        cfg,
	}
}

// List returns one page of posts. The page is clamped to at least 1, the limit
// to [1, MaxLimit] and any sort other than "asc" means newest first.
func (s *PostService) List(ctx context.Context, q ListQuery) (*PostPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	offset := math.MaxInt32
	if page-1 <= math.MaxInt32/limit {
		offset = (page - 1) * limit
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	posts, total, err := s.posts.List(ctx, repositories.PostQuery{
		CategoryID: q.CategoryID,
		Descending: q.Sort != "asc",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, storageError("list posts", err)
	}

	views, err := s.resolve(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: views, Total: total}, nil
}

// Get retrieves a post by ID with author and category resolved
func (s *PostService) Get(ctx context.Context, id int64) (*models.PostView, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Create stores a new post authored by the caller in an existing category and
// broadcasts it once it has been persisted.
func (s *PostService) Create(ctx context.Context, callerID int64, in PostInput) (*models.PostView, error) {
	if callerID <= 0 {
		return nil, ErrUnauthenticated
	}
	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   callerID,
		CategoryID: in.CategoryID,
	}
	post.BeforeCreate()
	if err := validatePost(&in, post, true); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := s.checkCategory(ctx, post.CategoryID); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			return nil, ErrDuplicateTitle
		}
		return nil, storageError("create post", err)
	}

	views, err := s.resolve(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	view := views[0]
	if s.events != nil {
		s.events.Broadcast(EventNewPost, view)
	}
	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": callerID}).Info("post created")
	return view, nil
}

// Update changes title, content and optionally category of a post owned by
// the caller. The slug follows the title.
func (s *PostService) Update(ctx context.Context, callerID, id int64, in PostInput) (*models.PostView, error) {
	if callerID <= 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, ErrForbidden
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Slug = models.Slugify(in.Title)
	if in.CategoryID > 0 {
		post.CategoryID = in.CategoryID
	}
	if err := validatePost(&in, post, false); err != nil {
		return nil, err
	}
	if in.CategoryID > 0 {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	post.Touch()

	if err := s.posts.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateSlug):
			return nil, ErrDuplicateTitle
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrPostNotFound
		}
		return nil, storageError("update post", err)
	}

	views, err := s.resolve(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Delete removes a post owned by the caller.
func (s *PostService) Delete(ctx context.Context, callerID, id int64) error {
	if callerID <= 0 {
		return ErrUnauthenticated
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPostNotFound
		}
		return storageError("delete post", err)
	}
	s.log.WithFields(logrus.Fields{"post_id": id, "author_id": callerID}).Info("post deleted")
	return nil
}

// CountByAuthor counts the caller's posts.
func (s *PostService) CountByAuthor(ctx context.Context, callerID int64) (int, error) {
	if callerID <= 0 {
		return 0, ErrUnauthenticated
	}
	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	count, err := s.posts.CountByAuthor(ctx, callerID)
	if err != nil {
		return 0, storageError("count posts", err)
	}
	return count, nil
}

func (s *PostService) load(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, storageError("get post", err)
	}
	return post, nil
}

func (s *PostService) checkCategory(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}
	_, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return storageError("get category", err)
	}
	return nil
}

// resolve joins author usernames and category names. References that no
// longer resolve are rendered empty instead of failing the read.
func (s *PostService) resolve(ctx context.Context, posts []*models.Post) ([]*models.PostView, error) {
	authors := make(map[int64]*models.Identity)
	categories := make(map[int64]*models.Category)
	views := make([]*models.PostView, 0, len(posts))

	for _, post := range posts {
		author, seen := authors[post.AuthorID]
		if !seen {
			found, err := s.users.GetByID(ctx, post.AuthorID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, storageError("resolve author", err)
			}
			author = found
			authors[post.AuthorID] = found
		}

		var category *models.Category
		if post.CategoryID > 0 {
			cached, seen := categories[post.CategoryID]
			if !seen {
				found, err := s.categories.GetByID(ctx, post.CategoryID)
				if err != nil && !errors.Is(err, repositories.ErrNotFound) {
					return nil, storageError("resolve category", err)
				}
				cached = found
				categories[post.CategoryID] = found
			}
			category = cached
		}

		views = append(views, post.View(author, category))
	}
	return views, nil
}

// validatePost checks the input tags and the derived slug. New posts must
// also name a category; updates may leave it out to keep the current one.
func validatePost(in *PostInput, post *models.Post, requireCategory bool) error {
	ve := &ValidationError{}
	if err := validateInput(in); err != nil {
		var fields *ValidationError
		if !errors.As(err, &fields) {
			return err
		}
		ve.Fields = append(ve.Fields, fields.Fields...)
	}
	if post.Slug == "" && !ve.has("title") {
		ve.Fields = append(ve.Fields, FieldError{Param: "title", Msg: "title must contain at least one letter or digit"})
	}
	if requireCategory && in.CategoryID == 0 {
		ve.Fields = append(ve.Fields, FieldError{Param: "category", Msg: "category is required"})
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}
