package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCSPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/shop-images/products/p1/a.png",
		GCSPublicURL("shop-images", "/products/p1/a.png"))
}

func TestParseGCSURL(t *testing.T) {
	cases := []struct {
		in     string
		bucket string
		object string
		ok     bool
	}{
		{"https://storage.googleapis.com/b/products/p1/a.png", "b", "products/p1/a.png", true},
		{"https://storage.cloud.google.com/b/x%20y.jpg", "b", "x y.jpg", true},
		{"https://example.com/b/a.png", "", "", false},
		{"https://storage.googleapis.com/b", "", "", false},
		{"::not a url", "", "", false},
	}
	for _, tc := range cases {
		b, o, ok := ParseGCSURL(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.bucket, b, tc.in)
		assert.Equal(t, tc.object, o, tc.in)
	}
}

func TestSanitizePathSegment(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizePathSegment(" a/b\\c "))
	assert.Equal(t, "id", SanitizePathSegment("..id.."))
}
