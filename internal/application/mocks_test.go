package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
	"github.com/mar1uz/cabana-test/internal/domain/transaction"
	redisinfra "github.com/mar1uz/cabana-test/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockRepository implements booking.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *booking.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*booking.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Reservation), args.Error(1)
}

func (m *MockRepository) GetByOwnerID(ctx context.Context, ownerID int64, limit, offset int) ([]*booking.Reservation, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context, limit, offset int) ([]*booking.Reservation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockRepository) ListConfirmedOverlapping(ctx context.Context, dates booking.DateRange) ([]*booking.Reservation, error) {
	args := m.Called(ctx, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockRepository) ListConfirmedOverlappingTx(ctx context.Context, tx transaction.Tx, dates booking.DateRange, excludeID int64) ([]*booking.Reservation, error) {
	args := m.Called(ctx, tx, dates, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockRepository) ListConfirmedRanges(ctx context.Context) ([]booking.DateRange, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.DateRange), args.Error(1)
}

func (m *MockRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*booking.Reservation, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, r *booking.Reservation, expected booking.Status) error {
	args := m.Called(ctx, tx, r, expected)
	return args.Error(0)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockCalendarCache implements CalendarCache
type MockCalendarCache struct {
	mock.Mock
}

func (m *MockCalendarCache) GetBookedRanges(ctx context.Context) ([]booking.DateRange, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.DateRange), args.Error(1)
}

func (m *MockCalendarCache) SetBookedRanges(ctx context.Context, ranges []booking.DateRange, ttl time.Duration) error {
	args := m.Called(ctx, ranges, ttl)
	return args.Error(0)
}

func (m *MockCalendarCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
