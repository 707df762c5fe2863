// internal/domain/comment/entity.go
package comment

import (
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/apperr"
)

// Comment is a product review. One per (product, user).
type Comment struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// denormalized on read
	Username     string
	ProductTitle string
}

var (
	ErrNotFound        = apperr.New(apperr.KindNotFound, "Not found.")
	ErrAlreadyReviewed = apperr.New(apperr.KindConflict, "You have already commented on this product.")
)

const (
	MinRating     = 1
	MaxRating     = 5
	MinTextLength = 5
)

func New(id, productID, userID string, rating int, text string, now time.Time) (Comment, error) {
	c := Comment{
		ID:        strings.TrimSpace(id),
		ProductID: strings.TrimSpace(productID),
		UserID:    strings.TrimSpace(userID),
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := c.validate(); err != nil {
		return Comment{}, err
	}
	return c, nil
}

func (c Comment) validate() error {
	switch {
	case c.ID == "":
		return apperr.Validation("id", "id is required")
	case c.ProductID == "":
		return apperr.Validation("product", "This field is required.")
	case c.UserID == "":
		return apperr.Validation("user", "This field is required.")
	}
	if err := ValidateRating(c.Rating); err != nil {
		return err
	}
	return ValidateText(c.Text)
}

func ValidateRating(r int) error {
	if r < MinRating {
		return apperr.Validation("rating", "Rating must be greater than or equal to 1.")
	}
	if r > MaxRating {
		return apperr.Validation("rating", "Rating must be lower than or equal to 5.")
	}
	return nil
}

// ValidateText allows an empty comment or one with at least 5 characters.
func ValidateText(s string) error {
	if s != "" && utf8.RuneCountInString(s) < MinTextLength {
		return apperr.Validation("text", "Comment must have at least 5 characters.")
	}
	return nil
}

type Patch struct {
	Rating *int
	Text   *string
}

func (c Comment) Apply(p Patch, now time.Time) (Comment, error) {
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
	if p.Text != nil {
		c.Text = strings.TrimSpace(*p.Text)
	}
	c.UpdatedAt = now.UTC()
	if err := c.validate(); err != nil {
		return Comment{}, err
	}
	return c, nil
}

const CommentsTableDDL = `
CREATE TABLE IF NOT EXISTS comments (
  id         TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  rating     SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
  text       TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (product_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at DESC);
`
