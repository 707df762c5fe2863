// internal/domain/product/entity.go
package product

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/apperr"
)

type Product struct {
	ID          string
	CategoryID  string
	Title       string
	Description string
	Slug        string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// CategoryTitle is filled by repositories on read.
	CategoryTitle string
}

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "Not found.")
	ErrSlugTaken         = apperr.Validation("slug", "This field is taken")
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "product: insufficient stock")
	ErrInvalidQuantity   = apperr.New(apperr.KindInvalidQuantity, "Quantity must be greater than zero.")
)

const (
	MinTitleLength        = 3
	MaxTitleLength        = 100
	MinTitleNoDescription = 10
)

var (
	maxPrice = decimal.New(1, 8) // NUMERIC(10,2)
	minPrice = decimal.NewFromInt(1)
	slugRe   = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// New builds a product and applies field and object level rules.
func New(
	id, categoryID, title, description, slug string,
	price decimal.Decimal,
	stock int,
	isActive bool,
	now time.Time,
) (Product, error) {
	p := Product{
		ID:          strings.TrimSpace(id),
		CategoryID:  strings.TrimSpace(categoryID),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Slug:        strings.TrimSpace(slug),
		Price:       price,
		Stock:       stock,
		IsActive:    isActive,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	if p.ID == "" {
		return apperr.Validation("id", "id is required")
	}
	if p.CategoryID == "" {
		return apperr.Validation("category", "This field is required.")
	}

	n := utf8.RuneCountInString(p.Title)
	switch {
	case n == 0:
		return apperr.Validation("title", "This field is required.")
	case n < MinTitleLength:
		return apperr.Validation("title", "Ensure this field has at least 3 characters.")
	case n > MaxTitleLength:
		return apperr.Validation("title", "Ensure this field has no more than 100 characters.")
	}

	if p.Slug == "" {
		return apperr.Validation("slug", "This field is required.")
	}
	if !slugRe.MatchString(p.Slug) {
		return apperr.Validation("slug", "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens.")
	}

	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if p.Stock < 0 {
		return apperr.Validation("stock", "Ensure this value is greater than or equal to 0.")
	}

	// object level rules
	if p.Description == "" && n < MinTitleNoDescription {
		return apperr.Validation("title", "Title must be at least 10 characters long when description is empty.")
	}
	if p.IsActive && p.Stock == 0 {
		return apperr.Validation("stock", "Active product must have stock greater than 0.")
	}
	return nil
}

func ValidatePrice(price decimal.Decimal) error {
	if price.LessThan(minPrice) {
		return apperr.Validation("price", "Price must be greater than 0")
	}
	if !price.Equal(price.Round(2)) {
		return apperr.Validation("price", "Ensure that there are no more than 2 decimal places.")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return apperr.Validation("price", "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}

// Patch is a partial update. Update (PUT) sets every field.
type Patch struct {
	CategoryID  *string
	Title       *string
	Description *string
	Slug        *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

func (p Product) Apply(in Patch, now time.Time) (Product, error) {
	if in.CategoryID != nil {
		p.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Slug != nil {
		p.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = now.UTC()
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

const ProductsTableDDL = `
CREATE TABLE IF NOT EXISTS products (
  id          TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  title       VARCHAR(100) NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  slug        VARCHAR(50) NOT NULL UNIQUE,
  price       NUMERIC(10,2) NOT NULL CHECK (price >= 1),
  stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  is_active   BOOLEAN NOT NULL DEFAULT TRUE,
  image_url   TEXT NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_is_active   ON products(is_active);
`
