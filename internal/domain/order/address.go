package order

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain/apperr"
)

// Address is the delivery address captured with the order.
type Address struct {
	FullName    string
	Email       string
	PhoneNumber string
	Line1       string
	Line2       string
	City        string
	District    string
	PostalCode  string
	Country     string
}

func (a Address) normalize() Address {
	return Address{
		FullName:    strings.TrimSpace(a.FullName),
		Email:       strings.TrimSpace(a.Email),
		PhoneNumber: strings.TrimSpace(a.PhoneNumber),
		Line1:       strings.TrimSpace(a.Line1),
		Line2:       strings.TrimSpace(a.Line2),
		City:        strings.TrimSpace(a.City),
		District:    strings.TrimSpace(a.District),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		Country:     strings.TrimSpace(a.Country),
	}
}

type addressField struct {
	name     string
	value    string
	max      int
	required bool
}

// Validate checks required fields and column lengths.
func (a Address) Validate() error {
	a = a.normalize()
	fields := []addressField{
		{"full_name", a.FullName, 120, true},
		{"email", a.Email, 254, true},
		{"phone_number", a.PhoneNumber, 20, true},
		{"address_line_1", a.Line1, 255, true},
		{"address_line_2", a.Line2, 255, false},
		{"city", a.City, 100, true},
		{"district", a.District, 100, true},
		{"postal_code", a.PostalCode, 20, true},
		{"country", a.Country, 50, true},
	}
	for _, f := range fields {
		if f.required && f.value == "" {
			return apperr.Validation(f.name, "This field is required.")
		}
		if utf8.RuneCountInString(f.value) > f.max {
			return apperr.Validation(f.name, "Ensure this field has no more than "+strconv.Itoa(f.max)+" characters.")
		}
	}
	if addr, err := mail.ParseAddress(a.Email); err != nil || addr.Address != a.Email {
		return apperr.Validation("email", "Enter a valid email address.")
	}
	return nil
}
