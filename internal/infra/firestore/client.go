// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewClient opens a Firestore client for the comments store.
// credentialsFile が空の場合は ADC (Application Default Credentials) を使用します。
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firestore: projectID is empty")
	}
	client, err := firestore.NewClient(ctx, projectID, ClientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Printf("[firestore] connected (project: %s)", projectID)
	return client, nil
}

// ClientOptions は GCP クライアント共通のオプション（認証ファイル指定）を返します。
// GCS / Secret Manager でも同じものを使う。
func ClientOptions(credentialsFile string) []option.ClientOption {
	if f := strings.TrimSpace(credentialsFile); f != "" {
		return []option.ClientOption{option.WithCredentialsFile(f)}
	}
	return nil
}
