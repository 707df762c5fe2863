package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/apperr"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindInsufficientStock, http.StatusBadRequest},
		{apperr.KindInvalidQuantity, http.StatusBadRequest},
		{apperr.KindEmptyCart, http.StatusBadRequest},
		{apperr.KindEmptyOrder, http.StatusBadRequest},
		{apperr.KindInvalidState, http.StatusBadRequest},
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindConflict, http.StatusBadRequest},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindUnauthorized, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindUnavailable, http.StatusServiceUnavailable},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind), string(tt.kind))
	}
}

func TestWriteErr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)

	w := httptest.NewRecorder()
	writeErr(w, r, "test", fmt.Errorf("cart.add: %w", cartdom.ErrEmpty))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Your cart is empty."}`, w.Body.String())

	w = httptest.NewRecorder()
	writeErr(w, r, "test", apperr.Validation("city", "This field is required."))
	assert.JSONEq(t, `{"error":"This field is required.","field":"city"}`, w.Body.String())

	w = httptest.NewRecorder()
	writeErr(w, r, "test", errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:", "internal detail stays in the log")

	w = httptest.NewRecorder()
	writeErr(w, r, "test", productdom.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadJSON(t *testing.T) {
	type body struct {
		Quantity *int `json:"quantity"`
	}
	read := func(s string) (body, error) {
		var b body
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
		err := readJSON(httptest.NewRecorder(), r, &b)
		return b, err
	}

	b, err := read(`{"quantity": 3}`)
	require.NoError(t, err)
	assert.Equal(t, 3, *b.Quantity)

	_, err = read(``)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = read(`{"quantity": "three"}`)
	assert.Equal(t, "quantity", apperr.FieldOf(err))

	_, err = read(`{"qty": 3}`)
	assert.Equal(t, "qty", apperr.FieldOf(err))

	_, err = read(`{"quantity": 1}{"quantity": 2}`)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = read(`{"quantity": 1, "pad": "` + strings.Repeat("x", maxJSONBody) + `"}`)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPageFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&page_size=20", nil)
	p := pageFrom(r)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 20, p.PerPage)

	r = httptest.NewRequest(http.MethodGet, "/?page=-1&page_size=abc", nil)
	p = pageFrom(r)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.PerPage)
}
