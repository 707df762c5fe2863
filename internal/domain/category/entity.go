// internal/domain/category/entity.go
package category

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/apperr"
)

type Category struct {
	ID          string
	Title       string
	Slug        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrNotFound     = apperr.New(apperr.KindNotFound, "Not found.")
	ErrTitleTaken   = apperr.Validation("title", "category with this title already exists.")
	ErrSlugTaken    = apperr.Validation("slug", "This field is taken")
	ErrHasProducts  = apperr.New(apperr.KindValidation, "Delete the related products before deleting this category.")
	ErrCategoryGone = apperr.Validation("category", "Invalid category - object does not exist.")
)

const MaxTitleLength = 100

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func New(id, title, slug, description string, isActive bool, now time.Time) (Category, error) {
	c := Category{
		ID:          strings.TrimSpace(id),
		Title:       strings.TrimSpace(title),
		Slug:        strings.TrimSpace(slug),
		Description: strings.TrimSpace(description),
		IsActive:    isActive,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (c Category) validate() error {
	if c.ID == "" {
		return apperr.Validation("id", "id is required")
	}
	if c.Title == "" {
		return apperr.Validation("title", "This field is required.")
	}
	if utf8.RuneCountInString(c.Title) > MaxTitleLength {
		return apperr.Validation("title", "Ensure this field has no more than 100 characters.")
	}
	return ValidateSlug(c.Slug)
}

// ValidateSlug accepts letters, numbers, underscores and hyphens.
func ValidateSlug(s string) error {
	if s == "" {
		return apperr.Validation("slug", "This field is required.")
	}
	if utf8.RuneCountInString(s) > 50 {
		return apperr.Validation("slug", "Ensure this field has no more than 50 characters.")
	}
	if !slugRe.MatchString(s) {
		return apperr.Validation("slug", "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens.")
	}
	return nil
}

type Patch struct {
	Title       *string
	Slug        *string
	Description *string
	IsActive    *bool
}

func (c Category) Apply(p Patch, now time.Time) (Category, error) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Slug != nil {
		c.Slug = strings.TrimSpace(*p.Slug)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	c.UpdatedAt = now.UTC()
	if err := c.validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

const CategoriesTableDDL = `
CREATE TABLE IF NOT EXISTS categories (
  id          TEXT PRIMARY KEY,
  title       VARCHAR(100) NOT NULL UNIQUE,
  slug        VARCHAR(50)  NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  is_active   BOOLEAN NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
);
`
