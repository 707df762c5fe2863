package product

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/apperr"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewProduct(t *testing.T) {
	p, err := New("p1", "c1", " Wireless Mouse ", "", "wireless-mouse", decimal.RequireFromString("19.99"), 5, true, now)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", p.Title)

	tests := []struct {
		name        string
		title, desc string
		slug        string
		price       string
		stock       int
		active      bool
		field       string
	}{
		{"short title", "ab", "desc", "ab", "10", 1, true, "title"},
		{"long title", strings.Repeat("a", 101), "d", "x", "10", 1, true, "title"},
		{"short title without description", "Mouse", "", "mouse", "10", 1, true, "title"},
		{"bad slug", "Wireless Mouse", "", "wireless mouse", "10", 1, true, "slug"},
		{"price below one", "Wireless Mouse", "", "m", "0.50", 1, true, "price"},
		{"too many decimals", "Wireless Mouse", "", "m", "1.005", 1, true, "price"},
		{"price too large", "Wireless Mouse", "", "m", "100000000", 1, true, "price"},
		{"negative stock", "Wireless Mouse", "", "m", "10", -1, false, "stock"},
		{"active without stock", "Wireless Mouse", "", "m", "10", 0, true, "stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("p1", "c1", tt.title, tt.desc, tt.slug, decimal.RequireFromString(tt.price), tt.stock, tt.active, now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}

	_, err = New("p1", "c1", "Wireless Mouse", "", "m", decimal.NewFromInt(10), 0, false, now)
	assert.NoError(t, err, "inactive products may have zero stock")
}

func TestCheckStock(t *testing.T) {
	p := Product{ID: "p1", Stock: 3}

	assert.NoError(t, CheckStock(p, 1))
	assert.NoError(t, CheckStock(p, 3))

	err := CheckStock(p, 0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidQuantity))
	assert.Equal(t, "Quantity must be greater than zero.", apperr.PublicMessage(err))

	err = CheckStock(p, -2)
	assert.True(t, errors.Is(err, apperr.ErrInvalidQuantity))

	err = CheckStock(p, 4)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, "Only 3 item(s) left in stock.", apperr.PublicMessage(err))
}

func TestApplyPatch(t *testing.T) {
	p, err := New("p1", "c1", "Wireless Mouse", "", "wireless-mouse", decimal.NewFromInt(20), 5, true, now)
	require.NoError(t, err)

	zero := 0
	_, err = p.Apply(Patch{Stock: &zero}, now)
	assert.Equal(t, "stock", apperr.FieldOf(err))

	inactive := false
	got, err := p.Apply(Patch{Stock: &zero, IsActive: &inactive}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, now.Add(time.Hour), got.UpdatedAt)
}

func TestValidateImage(t *testing.T) {
	ext, ct, err := ValidateImage("Photo.JPG", 1024)
	require.NoError(t, err)
	assert.Equal(t, "jpg", ext)
	assert.Equal(t, "image/jpeg", ct)

	_, _, err = ValidateImage("doc.gif", 10)
	assert.Equal(t, "image", apperr.FieldOf(err))

	_, _, err = ValidateImage("big.png", MaxImageSize+1)
	assert.Equal(t, "image", apperr.FieldOf(err))
}
