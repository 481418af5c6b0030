package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
	redisinfra "github.com/mar1uz/cabana-test/internal/infrastructure/redis"
)

func TestAvailabilityService_Check_Available(t *testing.T) {
	repo := new(MockRepository)
	service := NewAvailabilityService(repo, nil)
	ctx := context.Background()

	dates := testDates(t, "2024-03-01", "2024-03-05")
	repo.On("ListConfirmedOverlapping", ctx, dates).Return([]*booking.Reservation{}, nil)

	available, conflicts, err := service.Check(ctx, dates)

	require.NoError(t, err)
	assert.True(t, available)
	assert.Empty(t, conflicts)
}

func TestAvailabilityService_Check_Occupied(t *testing.T) {
	repo := new(MockRepository)
	service := NewAvailabilityService(repo, nil)
	ctx := context.Background()

	dates := testDates(t, "2024-03-01", "2024-03-05")
	blocking := pendingReservation(t, 5, "2024-03-03", "2024-03-08")
	blocking.Status = booking.StatusConfirmed
	repo.On("ListConfirmedOverlapping", ctx, dates).
		Return([]*booking.Reservation{blocking}, nil)

	available, conflicts, err := service.Check(ctx, dates)

	require.NoError(t, err)
	assert.False(t, available)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(5), conflicts[0].ID)
}

func TestAvailabilityService_Check_InvalidRange(t *testing.T) {
	repo := new(MockRepository)
	service := NewAvailabilityService(repo, nil)
	ctx := context.Background()

	available, conflicts, err := service.Check(ctx, booking.DateRange{})

	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
	assert.False(t, available)
	assert.Nil(t, conflicts)
	repo.AssertNotCalled(t, "ListConfirmedOverlapping")
}

func TestAvailabilityService_BookedRanges_CacheHit(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCalendarCache)
	service := NewAvailabilityService(repo, cache)
	ctx := context.Background()

	cached := []booking.DateRange{testDates(t, "2024-03-01", "2024-03-05")}
	cache.On("GetBookedRanges", ctx).Return(cached, nil)

	ranges, err := service.BookedRanges(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, ranges)
	repo.AssertNotCalled(t, "ListConfirmedRanges")
}

func TestAvailabilityService_BookedRanges_CacheMissFallsBackToDB(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCalendarCache)
	service := NewAvailabilityService(repo, cache)
	ctx := context.Background()

	fromDB := []booking.DateRange{testDates(t, "2024-04-01", "2024-04-03")}
	cache.On("GetBookedRanges", ctx).Return(nil, redisinfra.ErrCacheMiss)
	repo.On("ListConfirmedRanges", ctx).Return(fromDB, nil)
	cache.On("SetBookedRanges", ctx, fromDB, bookedRangesCacheTTL).Return(nil)

	ranges, err := service.BookedRanges(ctx)

	require.NoError(t, err)
	assert.Equal(t, fromDB, ranges)
	cache.AssertExpectations(t)
}

func TestAvailabilityService_BookedRanges_CacheErrorFallsBackToDB(t *testing.T) {
	// キャッシュ障害は可用性に影響させない
	repo := new(MockRepository)
	cache := new(MockCalendarCache)
	service := NewAvailabilityService(repo, cache)
	ctx := context.Background()

	fromDB := []booking.DateRange{testDates(t, "2024-04-01", "2024-04-03")}
	cache.On("GetBookedRanges", ctx).Return(nil, errors.New("接続エラー"))
	repo.On("ListConfirmedRanges", ctx).Return(fromDB, nil)
	cache.On("SetBookedRanges", ctx, fromDB, bookedRangesCacheTTL).Return(nil)

	ranges, err := service.BookedRanges(ctx)

	require.NoError(t, err)
	assert.Equal(t, fromDB, ranges)
}

func TestAvailabilityService_BookedRanges_NoCache(t *testing.T) {
	repo := new(MockRepository)
	service := NewAvailabilityService(repo, nil)
	ctx := context.Background()

	fromDB := []booking.DateRange{testDates(t, "2024-05-01", "2024-05-02")}
	repo.On("ListConfirmedRanges", ctx).Return(fromDB, nil)

	ranges, err := service.BookedRanges(ctx)

	require.NoError(t, err)
	assert.Equal(t, fromDB, ranges)
}
