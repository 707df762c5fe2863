// internal/application/usecase/common_usecase.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// TxManager runs fn in one database transaction. The transaction travels in
// ctx, so repositories called with that ctx join it. A non-nil error from fn
// rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator is swapped in tests that need predictable ids.
type IDGenerator func() string

func newID() string { return uuid.NewString() }

var tracer trace.Tracer = otel.Tracer("storefront/usecase")
