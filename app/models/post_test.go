package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				ID:        1,
				Title:     "Valid Title",
				Slug:      "valid-title",
				Content:   "Body",
				AuthorID:  1,
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "empty title",
			post: &Post{
				Slug:      "x",
				Content:   "Body",
				AuthorID:  1,
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "empty content",
			post: &Post{
				Title:     "Valid Title",
				Slug:      "valid-title",
				AuthorID:  1,
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing author",
			post: &Post{
				Title:     "Valid Title",
				Slug:      "valid-title",
				Content:   "Body",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			post: &Post{
				Title:    "Valid Title",
				Slug:     "valid-title",
				Content:  "Body",
				AuthorID: 1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{
		Title:   "Hello, World!",
		Content: "Test Content",
	}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	assert.Equal(t, "hello-world", post.Slug)
}

func TestPostTouch(t *testing.T) {
	post := &Post{Title: "T", Content: "C"}
	post.BeforeCreate()

	post.Touch()
	assert.True(t, post.UpdatedAt.After(post.CreatedAt))
}

func TestPostView(t *testing.T) {
	post := &Post{ID: 3, Title: "Hello", Slug: "hello", Content: "World", AuthorID: 7, CategoryID: 2}

	t.Run("resolved references", func(t *testing.T) {
		v := post.View(&Identity{ID: 7, Username: "alice"}, &Category{ID: 2, Name: "Tech"})
		assert.Equal(t, int64(3), v.ID)
		assert.Equal(t, "alice", v.Author.Username)
		if assert.NotNil(t, v.Category) {
			assert.Equal(t, "Tech", v.Category.Name)
		}
	})

	t.Run("dangling references", func(t *testing.T) {
		v := post.View(nil, nil)
		assert.Equal(t, int64(7), v.Author.ID)
		assert.Empty(t, v.Author.Username)
		assert.Nil(t, v.Category)
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello", "hello"},
		{"Hello World", "hello-world"},
		{"  Go: the   good parts!  ", "go-the-good-parts"},
		{"C++ & Rust", "c-rust"},
		{"Ünïcode Títle", "ünïcode-títle"},
		{"2024 review", "2024-review"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}
