package product

import (
	"path/filepath"
	"strings"

	"storefront/internal/domain/apperr"
)

// MaxImageSize is the upload limit for product images.
const MaxImageSize = 10 << 20

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// ValidateImage checks the file extension and size, returning the
// normalized extension and its content type.
func ValidateImage(filename string, size int64) (ext, contentType string, err error) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
	ct, ok := imageContentTypes[ext]
	if !ok {
		return "", "", apperr.Validation("image", "File extension is not allowed. Allowed extensions are: png, jpg, jpeg.")
	}
	if err := ValidateImageSize(size); err != nil {
		return "", "", err
	}
	return ext, ct, nil
}

// ValidateImageSize also guards streamed uploads whose declared size lied.
func ValidateImageSize(size int64) error {
	if size <= 0 {
		return apperr.Validation("image", "The submitted file is empty.")
	}
	if size > MaxImageSize {
		return apperr.Validation("image", "Image size must not exceed 10 MB.")
	}
	return nil
}
