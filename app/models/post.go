package models

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	p.Slug = Slugify(p.Title)
}

// Touch records a modification.
func (p *Post) Touch() {
	p.UpdatedAt = time.Now().UTC()
	if !p.UpdatedAt.After(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt.Add(time.Nanosecond)
	}
}

// View resolves the post for display. A nil author or category means the
// reference no longer resolves.
func (p *Post) View(author *Identity, category *Category) *PostView {
	v := &PostView{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Author:    AuthorRef{ID: p.AuthorID},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if author != nil {
		v.Author.Username = author.Username
	}
	if category != nil {
		v.Category = &CategoryRef{ID: category.ID, Name: category.Name}
	}
	return v
}

// Slugify derives a URL-safe slug from a title: lowercase letters and digits
// with runs of anything else collapsed to a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
