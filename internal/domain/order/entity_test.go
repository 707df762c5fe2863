package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/apperr"
)

func validAddress() Address {
	return Address{
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+44 20 1234",
		Line1:       "12 St James's Square",
		City:        "London",
		District:    "Westminster",
		PostalCode:  "SW1Y 4JH",
		Country:     "UK",
	}
}

func TestNewOrder(t *testing.T) {
	o, err := New("o1", "u1", validAddress(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentMethodMock, o.PaymentMethod)
	assert.True(t, o.Total.IsZero())
}

func TestAddressValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(a *Address)
		field string
	}{
		{"missing full name", func(a *Address) { a.FullName = " " }, "full_name"},
		{"bad email", func(a *Address) { a.Email = "ada" }, "email"},
		{"long phone", func(a *Address) { a.PhoneNumber = "012345678901234567890" }, "phone_number"},
		{"missing line1", func(a *Address) { a.Line1 = "" }, "address_line_1"},
		{"missing city", func(a *Address) { a.City = "" }, "city"},
		{"missing district", func(a *Address) { a.District = "" }, "district"},
		{"missing postal code", func(a *Address) { a.PostalCode = "" }, "postal_code"},
		{"long country", func(a *Address) { a.Country = "Kingdom of Great Britain and Northern Ireland, United" }, "country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAddress()
			tt.edit(&a)
			_, err := New("o1", "u1", a, time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}

	a := validAddress()
	a.Line2 = ""
	assert.NoError(t, a.Validate(), "line 2 is optional")
}

func TestComputeTotal(t *testing.T) {
	o := Order{Items: []Item{
		NewItem("i1", "o1", "p1", 2, decimal.RequireFromString("19.99")),
		NewItem("i2", "o1", "p2", 1, decimal.RequireFromString("5.01")),
	}}
	assert.True(t, decimal.RequireFromString("44.99").Equal(o.ComputeTotal()))
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusShipped, false},
		{StatusProcessing, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusPending, StatusCanceled, true},
		{StatusShipped, StatusCanceled, true},
		{StatusDelivered, StatusCanceled, false},
		{StatusCanceled, StatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := Order{Status: tt.from}
			err := o.TransitionTo(tt.to, time.Now())
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, o.Status)
				return
			}
			assert.True(t, errors.Is(err, apperr.ErrInvalidState))
			assert.Equal(t, tt.from, o.Status)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" Shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, s)

	_, ok = ParseStatus("lost")
	assert.False(t, ok)
}
