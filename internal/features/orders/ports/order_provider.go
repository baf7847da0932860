package ports

import (
	"context"
	"time"

	"sparkpay-sync/internal/features/orders/domain"
)

// OrderProvider defines the interface for pulling orders from the store.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// GetOrders returns every order updated strictly after since.
	GetOrders(ctx context.Context, since time.Time) (domain.OrderList, error)
	// GetOrdersSince parses since as a date/time string and calls GetOrders.
	GetOrdersSince(ctx context.Context, since string) (domain.OrderList, error)
}

// CursorRepository persists the position of the incremental order sync.
type CursorRepository interface {
	// Get returns the stored cursor; ok is false when none has been saved.
	Get(ctx context.Context) (cursor time.Time, ok bool, err error)
	Save(ctx context.Context, cursor time.Time) error
	Delete(ctx context.Context) error
}
