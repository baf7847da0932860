package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sparkpay-sync/internal/core/logger"
	"sparkpay-sync/internal/features/orders/domain"
	"sparkpay-sync/internal/features/orders/ports"

	"go.uber.org/zap"
)

// ErrSinceRequired is returned when no start date is given.
var ErrSinceRequired = errors.New("since is required")

// OrderService lists store orders and runs the incremental order sync.
type OrderService struct {
	// provider is the interface for fetching order data from the store.
	provider ports.OrderProvider
	// cursors persists the sync position between runs.
	cursors ports.CursorRepository
	// initialSince is the cursor used before the first successful sync.
	initialSince time.Time

	// syncMu serializes Sync so two runs never race on the cursor.
	syncMu sync.Mutex
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(provider ports.OrderProvider, cursors ports.CursorRepository, initialSince time.Time) *OrderService {
	return &OrderService{
		provider:     provider,
		cursors:      cursors,
		initialSince: initialSince,
	}
}

// ListOrders returns the orders updated after since, exactly as the store returned them.
func (s *OrderService) ListOrders(ctx context.Context, since string) (domain.OrderList, error) {
	if strings.TrimSpace(since) == "" {
		return nil, ErrSinceRequired
	}

	orders, err := s.provider.GetOrdersSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// Sync pulls every order updated since the stored cursor and advances the cursor to
// the newest updated_at seen. On failure the cursor is left untouched.
func (s *OrderService) Sync(ctx context.Context) (*domain.SyncResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	since, ok, err := s.cursors.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cursor: %w", err)
	}
	if !ok {
		since = s.initialSince
	}

	orders, err := s.provider.GetOrders(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("service: failed to sync orders: %w", err)
	}

	result := &domain.SyncResult{
		Since:  since,
		Cursor: since,
		Orders: orders,
	}

	latest, found := orders.LatestUpdate()
	if found && latest.After(since) {
		if err := s.cursors.Save(ctx, latest); err != nil {
			return nil, fmt.Errorf("service: failed to save cursor: %w", err)
		}
		result.Cursor = latest
	}

	logger.Get().Info("Order sync completed",
		zap.Time("since", result.Since),
		zap.Time("cursor", result.Cursor),
		zap.Int("orders", len(orders)),
	)

	return result, nil
}

// ResetCursor forgets the sync position so the next Sync starts from the initial cursor.
func (s *OrderService) ResetCursor(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if err := s.cursors.Delete(ctx); err != nil {
		return fmt.Errorf("service: failed to reset cursor: %w", err)
	}
	return nil
}
