package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

const bookedRangesKey = "calendar:booked-ranges"

type cachedRange struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// CalendarCache は公開カレンダー（確定済み期間の一覧）のキャッシュを管理する
// 期間以外の情報（予約者・金額）は保存しない
type CalendarCache struct {
	client *redis.Client
}

// NewCalendarCache は新しいCalendarCacheインスタンスを作成する
func NewCalendarCache(client *redis.Client) *CalendarCache {
	return &CalendarCache{client: client}
}

// GetBookedRanges は確定済み期間の一覧をキャッシュから取得する
func (c *CalendarCache) GetBookedRanges(ctx context.Context) ([]booking.DateRange, error) {
	val, err := c.client.Get(ctx, bookedRangesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var cached []cachedRange
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("キャッシュ復元に失敗: %w", err)
	}
	ranges := make([]booking.DateRange, 0, len(cached))
	for _, cr := range cached {
		r, err := booking.ParseDateRange(cr.CheckIn, cr.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("キャッシュ復元に失敗: %w", err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// SetBookedRanges は確定済み期間の一覧をキャッシュに保存する
func (c *CalendarCache) SetBookedRanges(ctx context.Context, ranges []booking.DateRange, ttl time.Duration) error {
	cached := make([]cachedRange, len(ranges))
	for i, r := range ranges {
		cached[i] = cachedRange{
			CheckIn:  r.CheckIn.Format(booking.DateLayout),
			CheckOut: r.CheckOut.Format(booking.DateLayout),
		}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("キャッシュ変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, bookedRangesKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はカレンダーキャッシュを無効化する
// 予約状態が変わる操作（確定・キャンセル）の後に呼ばれる
func (c *CalendarCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, bookedRangesKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}
