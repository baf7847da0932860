package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sparkpay-sync/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderProvider is a mock implementation of ports.OrderProvider.
type MockOrderProvider struct {
	mock.Mock
}

func (m *MockOrderProvider) GetOrders(ctx context.Context, since time.Time) (domain.OrderList, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.OrderList), args.Error(1)
}

func (m *MockOrderProvider) GetOrdersSince(ctx context.Context, since string) (domain.OrderList, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.OrderList), args.Error(1)
}

// MockCursorRepository is a mock implementation of ports.CursorRepository.
type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) Get(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockCursorRepository) Save(ctx context.Context, cursor time.Time) error {
	args := m.Called(ctx, cursor)
	return args.Error(0)
}

func (m *MockCursorRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		provider := new(MockOrderProvider)
		svc := NewOrderService(provider, new(MockCursorRepository), epoch)

		expected := domain.OrderList{{"id": json.Number("1")}, {"id": json.Number("2")}}
		provider.On("GetOrdersSince", ctx, "2015-01-01").Return(expected, nil).Once()

		orders, err := svc.ListOrders(ctx, "2015-01-01")
		require.NoError(t, err)
		assert.Equal(t, expected, orders)
		provider.AssertExpectations(t)
	})

	t.Run("MissingSince", func(t *testing.T) {
		provider := new(MockOrderProvider)
		svc := NewOrderService(provider, new(MockCursorRepository), epoch)

		_, err := svc.ListOrders(ctx, " ")
		assert.ErrorIs(t, err, ErrSinceRequired)
		provider.AssertNotCalled(t, "GetOrdersSince", mock.Anything, mock.Anything)
	})

	t.Run("ProviderError", func(t *testing.T) {
		provider := new(MockOrderProvider)
		svc := NewOrderService(provider, new(MockCursorRepository), epoch)

		upstream := errors.New("boom")
		provider.On("GetOrdersSince", ctx, "2015-01-01").Return(nil, upstream).Once()

		_, err := svc.ListOrders(ctx, "2015-01-01")
		assert.ErrorIs(t, err, upstream)
		assert.Contains(t, err.Error(), "service: failed to list orders")
	})
}

func TestOrderService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstRunUsesInitialCursor", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		orders := domain.OrderList{
			{"id": json.Number("1"), "updated_at": "2014-03-19T13:31:47.923-05:00"},
			{"id": json.Number("2"), "updated_at": "2014-03-18T10:00:00-05:00"},
		}
		latest := time.Date(2014, 3, 19, 18, 31, 47, 923000000, time.UTC)

		cursors.On("Get", ctx).Return(time.Time{}, false, nil).Once()
		provider.On("GetOrders", ctx, epoch).Return(orders, nil).Once()
		cursors.On("Save", ctx, mock.MatchedBy(func(c time.Time) bool { return c.Equal(latest) })).Return(nil).Once()

		result, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, epoch, result.Since)
		assert.True(t, result.Cursor.Equal(latest))
		assert.Equal(t, orders, result.Orders)

		provider.AssertExpectations(t)
		cursors.AssertExpectations(t)
	})

	t.Run("ResumesFromStoredCursor", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		stored := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
		cursors.On("Get", ctx).Return(stored, true, nil).Once()
		provider.On("GetOrders", ctx, stored).Return(domain.OrderList{}, nil).Once()

		result, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, result.Since)
		assert.Equal(t, stored, result.Cursor)
		assert.Empty(t, result.Orders)

		cursors.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		provider.AssertExpectations(t)
	})

	t.Run("OrdersWithoutTimestampsKeepCursor", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		stored := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
		cursors.On("Get", ctx).Return(stored, true, nil).Once()
		provider.On("GetOrders", ctx, stored).Return(domain.OrderList{{"id": json.Number("7")}}, nil).Once()

		result, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, result.Cursor)
		assert.Len(t, result.Orders, 1)
		cursors.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("ProviderErrorKeepsCursor", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		upstream := errors.New("rate limited")
		cursors.On("Get", ctx).Return(time.Time{}, false, nil).Once()
		provider.On("GetOrders", ctx, epoch).Return(nil, upstream).Once()

		result, err := svc.Sync(ctx)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, upstream)
		cursors.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("CursorLoadError", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		cursors.On("Get", ctx).Return(time.Time{}, false, errors.New("redis down")).Once()

		_, err := svc.Sync(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load cursor")
		provider.AssertNotCalled(t, "GetOrders", mock.Anything, mock.Anything)
	})

	t.Run("CursorSaveError", func(t *testing.T) {
		provider := new(MockOrderProvider)
		cursors := new(MockCursorRepository)
		svc := NewOrderService(provider, cursors, epoch)

		orders := domain.OrderList{{"id": json.Number("1"), "updated_at": "2014-03-19T13:31:47-05:00"}}
		cursors.On("Get", ctx).Return(time.Time{}, false, nil).Once()
		provider.On("GetOrders", ctx, epoch).Return(orders, nil).Once()
		cursors.On("Save", ctx, mock.Anything).Return(errors.New("redis down")).Once()

		_, err := svc.Sync(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save cursor")
	})
}

func TestOrderService_ResetCursor(t *testing.T) {
	ctx := context.Background()

	cursors := new(MockCursorRepository)
	svc := NewOrderService(new(MockOrderProvider), cursors, epoch)

	cursors.On("Delete", ctx).Return(nil).Once()
	assert.NoError(t, svc.ResetCursor(ctx))

	cursors.On("Delete", ctx).Return(errors.New("redis down")).Once()
	err := svc.ResetCursor(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service: failed to reset cursor")

	cursors.AssertExpectations(t)
}
