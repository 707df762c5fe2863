package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/apperr"
)

func TestAllowed(t *testing.T) {
	anon := Anonymous()
	alice := Actor{UserID: "u1", Username: "alice"}
	bob := Actor{UserID: "u2", Username: "bob"}
	staff := Actor{UserID: "s1", Username: "admin", IsStaff: true}

	tests := []struct {
		name  string
		actor Actor
		cap   Capability
		res   Resource
		want  bool
	}{
		{"anon reads active product", anon, Read, Catalog(true), true},
		{"anon cannot read inactive product", anon, Read, Catalog(false), false},
		{"staff reads inactive product", staff, Read, Catalog(false), true},
		{"user cannot write catalog", alice, Write, Catalog(true), false},
		{"staff writes catalog", staff, Write, Catalog(true), true},

		{"anon reads comments", anon, Read, Comment("u1"), true},
		{"anon cannot post comment", anon, Write, Comment(""), false},
		{"user posts comment", alice, Write, Comment(""), true},
		{"author edits own comment", alice, Owner, Comment("u1"), true},
		{"other user cannot edit comment", bob, Owner, Comment("u1"), false},
		{"staff is not comment owner", staff, Owner, Comment("u1"), false},

		{"owner uses cart", alice, Write, Cart("u1"), true},
		{"other user cannot use cart", bob, Read, Cart("u1"), false},

		{"owner reads order", alice, Read, Order("u1"), true},
		{"staff reads any order", staff, Read, Order("u1"), true},
		{"other user cannot read order", bob, Read, Order("u1"), false},
		{"owner cannot change status", alice, Write, Order("u1"), false},
		{"staff changes status", staff, Write, Order("u1"), true},
		{"owner pays order", alice, Owner, Order("u1"), true},
		{"staff cannot pay foreign order", staff, Owner, Order("u1"), false},

		{"unknown kind denied", staff, Read, Resource{Kind: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.cap, tt.res))
		})
	}
}

func TestCheckErrorKinds(t *testing.T) {
	err := Check(Anonymous(), Write, Catalog(true))
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	err = Check(Actor{UserID: "u1"}, Write, Catalog(true))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	assert.NoError(t, Check(Actor{UserID: "u1"}, Owner, Comment("u1")))

	assert.True(t, errors.Is(RequireStaff(Actor{UserID: "u1"}), apperr.ErrForbidden))
	assert.True(t, errors.Is(RequireAuth(Anonymous()), apperr.ErrUnauthorized))
}
