package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mar1uz/cabana-test/internal/application"
	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

// MockReservationService はReservationServiceInterfaceのモック
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, input application.CreateReservationInput) (*booking.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) GetOwnerReservations(ctx context.Context, ownerID int64, limit, offset int) ([]*booking.Reservation, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) ListAllReservations(ctx context.Context, actor booking.Actor, limit, offset int) ([]*booking.Reservation, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) ConfirmReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

// MockAvailabilityService はAvailabilityServiceInterfaceのモック
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) Check(ctx context.Context, dates booking.DateRange) (bool, []*booking.Reservation, error) {
	args := m.Called(ctx, dates)
	if args.Get(1) == nil {
		return args.Bool(0), nil, args.Error(2)
	}
	return args.Bool(0), args.Get(1).([]*booking.Reservation), args.Error(2)
}

func (m *MockAvailabilityService) BookedRanges(ctx context.Context) ([]booking.DateRange, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.DateRange), args.Error(1)
}
