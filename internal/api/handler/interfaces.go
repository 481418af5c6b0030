package handler

import (
	"context"
	"time"

	"github.com/mar1uz/cabana-test/internal/application"
	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

// AvailabilityServiceInterface は空き状況サービスのインターフェース
type AvailabilityServiceInterface interface {
	Check(ctx context.Context, dates booking.DateRange) (bool, []*booking.Reservation, error)
	BookedRanges(ctx context.Context) ([]booking.DateRange, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*booking.Reservation, error)
	GetReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error)
	GetOwnerReservations(ctx context.Context, ownerID int64, limit, offset int) ([]*booking.Reservation, error)
	ListAllReservations(ctx context.Context, actor booking.Actor, limit, offset int) ([]*booking.Reservation, error)
	ConfirmReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error)
	CancelReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error)
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}
