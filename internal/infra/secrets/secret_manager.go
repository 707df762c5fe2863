// internal/infra/secrets/secret_manager.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// AccessFunc fetches the payload of a fully qualified secret version name.
type AccessFunc func(ctx context.Context, name string) ([]byte, error)

// Provider reads secrets of one GCP project.
type Provider struct {
	projectID string
	access    AccessFunc
	close     func() error
}

// NewProvider opens a Secret Manager client. opts may carry a credentials file.
func NewProvider(ctx context.Context, projectID string, opts ...option.ClientOption) (*Provider, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("secrets: projectID is empty")
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	access := func(ctx context.Context, name string) ([]byte, error) {
		res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return nil, err
		}
		if res == nil || res.Payload == nil {
			return nil, nil
		}
		return res.Payload.Data, nil
	}
	return &Provider{projectID: projectID, access: access, close: client.Close}, nil
}

// NewProviderWithAccess is used by tests and by callers that already own a client.
func NewProviderWithAccess(projectID string, access AccessFunc) *Provider {
	return &Provider{projectID: strings.TrimSpace(projectID), access: access}
}

// VersionName builds "projects/<p>/secrets/<id>/versions/<v>"; v defaults to latest.
func VersionName(projectID, secretID, version string) string {
	if strings.TrimSpace(version) == "" {
		version = "latest"
	}
	return "projects/" + projectID + "/secrets/" + secretID + "/versions/" + version
}

// Get returns the trimmed payload of secretID. An empty payload is an error.
func (p *Provider) Get(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.access == nil {
		return "", errors.New("secrets: provider not configured")
	}
	secretID = strings.TrimSpace(secretID)
	if secretID == "" {
		return "", errors.New("secrets: secretID is empty")
	}
	// "name:version" でバージョン指定も可
	version := ""
	if i := strings.LastIndex(secretID, ":"); i > 0 {
		secretID, version = secretID[:i], secretID[i+1:]
	}
	name := VersionName(p.projectID, secretID, version)
	data, err := p.access(ctx, name)
	if err != nil {
		return "", fmt.Errorf("access secret version %s: %w", name, err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("secrets: empty payload (%s)", name)
	}
	return v, nil
}

func (p *Provider) Close() error {
	if p == nil || p.close == nil {
		return nil
	}
	return p.close()
}
