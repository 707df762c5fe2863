// internal/adapters/out/gcs/productImage_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	gcscommon "storefront/internal/adapters/out/gcs/common"
	productdom "storefront/internal/domain/product"
)

// ProductImageRepositoryGCS stores product images as
// products/{productID}/{uuid}.{ext} in one bucket.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

var _ productdom.ImageStore = (*ProductImageRepositoryGCS)(nil)

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

// ObjectPath is exported for tests and for the delete path.
func ObjectPath(productID, objectID, ext string) string {
	return fmt.Sprintf("products/%s/%s.%s",
		gcscommon.SanitizePathSegment(productID),
		gcscommon.SanitizePathSegment(objectID),
		strings.TrimPrefix(strings.ToLower(ext), "."))
}

func (r *ProductImageRepositoryGCS) Put(ctx context.Context, productID, ext, contentType string, src io.Reader) (string, error) {
	if r.Client == nil {
		return "", errors.New("ProductImageRepositoryGCS: nil storage client")
	}
	if r.Bucket == "" {
		return "", errors.New("ProductImageRepositoryGCS: bucket is empty")
	}

	obj := ObjectPath(productID, uuid.NewString(), ext)
	w := r.Client.Bucket(r.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return "", err
	}
	if n > productdom.MaxImageSize {
		_ = w.Close()
		_ = r.Client.Bucket(r.Bucket).Object(obj).Delete(ctx)
		return "", productdom.ValidateImageSize(n)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	log.Printf("[gcs] product image stored bucket=%s object=%s bytes=%d", r.Bucket, obj, n)
	return gcscommon.GCSPublicURL(r.Bucket, obj), nil
}

// Delete removes the object behind url. Foreign or already-gone objects
// are not errors.
func (r *ProductImageRepositoryGCS) Delete(ctx context.Context, url string) error {
	if r.Client == nil {
		return errors.New("ProductImageRepositoryGCS: nil storage client")
	}
	bucket, obj, ok := gcscommon.ParseGCSURL(url)
	if !ok || bucket != r.Bucket || !strings.HasPrefix(obj, "products/") {
		return nil
	}
	err := r.Client.Bucket(bucket).Object(obj).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
