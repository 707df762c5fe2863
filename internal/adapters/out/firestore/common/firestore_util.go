// internal/adapters/out/firestore/common/firestore_util.go
package common

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsNotFound は Firestore の NotFound を判定します。
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsAlreadyExists は DocumentRef.Create の重複を判定します。
func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// CompositeID joins parts into a deterministic document id ("a__b").
// "/" is not allowed in Firestore ids and is replaced.
func CompositeID(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ReplaceAll(strings.TrimSpace(p), "/", "_"))
	}
	return strings.Join(out, "__")
}

// CountQuery counts documents matching q without loading their fields.
func CountQuery(ctx context.Context, q firestore.Query) (int, error) {
	it := q.Select().Documents(ctx)
	defer it.Stop()
	n := 0
	for {
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
		n++
	}
}

// DeleteWhere deletes every document matched by q.
func DeleteWhere(ctx context.Context, client *firestore.Client, q firestore.Query) (int, error) {
	it := q.Select().Documents(ctx)
	defer it.Stop()

	bw := client.BulkWriter(ctx)
	n := 0
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			bw.End()
			return n, err
		}
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return n, err
		}
		n++
	}
	bw.End()
	return n, nil
}
