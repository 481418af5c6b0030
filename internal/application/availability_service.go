package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
	redisinfra "github.com/mar1uz/cabana-test/internal/infrastructure/redis"
	"github.com/mar1uz/cabana-test/internal/pkg/logger"
	"github.com/mar1uz/cabana-test/internal/pkg/metrics"
)

// 公開カレンダーのキャッシュ保持時間。確定・キャンセルで即時無効化されるため短くてよい
const bookedRangesCacheTTL = 30 * time.Second

// CalendarCache は確定済み期間一覧のキャッシュインターフェース
type CalendarCache interface {
	GetBookedRanges(ctx context.Context) ([]booking.DateRange, error)
	SetBookedRanges(ctx context.Context, ranges []booking.DateRange, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// AvailabilityService は指定期間の空き状況を判定する
// カレンダーを塞ぐのは確定済み予約のみで、保留中の予約は考慮しない
type AvailabilityService struct {
	repo  booking.Repository
	cache CalendarCache // nil可
}

func NewAvailabilityService(repo booking.Repository, cache CalendarCache) *AvailabilityService {
	return &AvailabilityService{repo: repo, cache: cache}
}

// Check は指定期間が予約可能かを返す。重複する確定済み予約があれば併せて返す
func (s *AvailabilityService) Check(ctx context.Context, dates booking.DateRange) (bool, []*booking.Reservation, error) {
	if err := dates.Validate(); err != nil {
		countAvailability("invalid")
		return false, nil, err
	}
	conflicts, err := s.repo.ListConfirmedOverlapping(ctx, dates)
	if err != nil {
		return false, nil, err
	}
	if len(conflicts) > 0 {
		countAvailability("occupied")
		return false, conflicts, nil
	}
	countAvailability("available")
	return true, nil, nil
}

// BookedRanges は確定済み予約の期間一覧を返す（公開カレンダー向け）
// 期間のみを返し、予約者や金額は含めない
func (s *AvailabilityService) BookedRanges(ctx context.Context) ([]booking.DateRange, error) {
	if s.cache != nil {
		ranges, err := s.cache.GetBookedRanges(ctx)
		if err == nil {
			return ranges, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("カレンダーキャッシュの取得に失敗（DBへフォールバック）", zap.Error(err))
		}
	}

	ranges, err := s.repo.ListConfirmedRanges(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBookedRanges(ctx, ranges, bookedRangesCacheTTL); err != nil {
			logger.Warn("カレンダーキャッシュの保存に失敗", zap.Error(err))
		}
	}
	return ranges, nil
}

func countAvailability(result string) {
	if m := metrics.Get(); m != nil {
		m.AvailabilityChecksTotal.WithLabelValues(result).Inc()
	}
}
