package models

import (
	"strings"
	"time"
)

// Validate checks if the category meets all validation requirements
func (c *Category) Validate() error {
	return validate.Struct(c)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Category) BeforeCreate() {
	c.Name = strings.TrimSpace(c.Name)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// Validate checks if the identity meets all validation requirements
func (i *Identity) Validate() error {
	return validate.Struct(i)
}

// BeforeCreate sets up any necessary fields before creation
func (i *Identity) BeforeCreate() {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
}

// Public strips the credential material from the identity.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		Username:  i.Username,
		Email:     i.Email,
		CreatedAt: i.CreatedAt,
	}
}
