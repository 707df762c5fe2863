package user

import "context"

// Repository persists users. Unique violations on username / email are
// reported as ErrUsernameTaken / ErrEmailTaken.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)

	// ExistsUsername / ExistsEmail ignore the row whose id equals excludeID.
	ExistsUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsEmail(ctx context.Context, email, excludeID string) (bool, error)

	Create(ctx context.Context, u User) (User, error)
	Save(ctx context.Context, u User) (User, error)
}
