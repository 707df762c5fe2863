package common

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/apperr"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want *apperr.Error
	}{
		{"no rows", sql.ErrNoRows, apperr.ErrNotFound},
		{"unique", &pq.Error{Code: "23505"}, apperr.ErrConflict},
		{"fk", &pq.Error{Code: "23503"}, apperr.ErrValidation},
		{"check", &pq.Error{Code: "23514"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Translate("repo.op", tc.err)
			assert.True(t, errors.Is(got, tc.want))
			assert.True(t, errors.Is(got, tc.err), "driver error stays in the chain")
		})
	}

	assert.Nil(t, Translate("repo.op", nil))

	domainErr := apperr.New(apperr.KindNotFound, "Order not found")
	assert.Same(t, domainErr, Translate("repo.op", domainErr))

	other := errors.New("connection reset")
	got := Translate("repo.op", other)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(got))
	assert.ErrorIs(t, got, other)
}

func TestConstraintName(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "products_slug_key"}
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.Equal(t, "products_slug_key", ConstraintName(err))
	assert.Equal(t, "", ConstraintName(errors.New("x")))
}

func TestAppendCondAndWhere(t *testing.T) {
	var where []string
	var args []any
	AppendCond(&where, &args, "category_id = $%d", "c1")
	AppendCond(&where, &args, "price >= $%d", "10")
	assert.Equal(t, "WHERE category_id = $1 AND price >= $2", WhereSQL(where))
	assert.Equal(t, []any{"c1", "10"}, args)
	assert.Equal(t, "", WhereSQL(nil))
}

func TestBuildOrderBy(t *testing.T) {
	allowed := map[string]string{"price": "p.price", "created": "p.created_at"}
	assert.Equal(t, "ORDER BY p.price DESC", BuildOrderBy("price", allowed, "desc", "p.id"))
	assert.Equal(t, "ORDER BY p.created_at ASC", BuildOrderBy("Created", allowed, "sideways", "p.id"))
	assert.Equal(t, "ORDER BY p.id", BuildOrderBy("title; DROP", allowed, "asc", "p.id"))
	assert.Equal(t, "", BuildOrderBy("", allowed, "", ""))
}
