// internal/domain/permission/entity.go
package permission

import "strings"

// Actor is the caller identity resolved by the auth middleware.
// The zero value is an anonymous caller.
type Actor struct {
	UserID   string
	Username string
	IsStaff  bool
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

func (a Actor) Authenticated() bool { return strings.TrimSpace(a.UserID) != "" }

// Capability is what the caller wants to do with a resource.
type Capability string

const (
	Read  Capability = "read"
	Write Capability = "write"
	Owner Capability = "owner"
)

// ResourceKind selects the policy applied by Allowed.
type ResourceKind string

const (
	KindCatalog ResourceKind = "catalog" // products and categories
	KindComment ResourceKind = "comment"
	KindCart    ResourceKind = "cart"
	KindOrder   ResourceKind = "order"
	KindProfile ResourceKind = "profile"
)

// Resource describes the target of a capability check.
type Resource struct {
	Kind    ResourceKind
	OwnerID string
	// Public marks catalog entries visible to everyone (active flag).
	Public bool
}

func Catalog(active bool) Resource { return Resource{Kind: KindCatalog, Public: active} }

func Comment(authorID string) Resource { return Resource{Kind: KindComment, OwnerID: authorID} }

func Cart(ownerID string) Resource { return Resource{Kind: KindCart, OwnerID: ownerID} }

func Order(ownerID string) Resource { return Resource{Kind: KindOrder, OwnerID: ownerID} }

func Profile(userID string) Resource { return Resource{Kind: KindProfile, OwnerID: userID} }
