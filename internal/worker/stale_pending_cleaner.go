package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mar1uz/cabana-test/internal/pkg/logger"
)

// PendingCleaner は放置された保留中予約を取り消すインターフェース
type PendingCleaner interface {
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// StalePendingCleaner は放置された保留中予約をクリーンアップするワーカー
// 保留中のまま一定期間が過ぎた予約を定期的に取り消す
type StalePendingCleaner struct {
	reservationService PendingCleaner
	interval           time.Duration
	maxPendingAge      time.Duration
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewStalePendingCleaner は新しいクリーナーを作成
func NewStalePendingCleaner(
	rs PendingCleaner,
	interval time.Duration,
	maxPendingAge time.Duration,
) *StalePendingCleaner {
	return &StalePendingCleaner{
		reservationService: rs,
		interval:           interval,
		maxPendingAge:      maxPendingAge,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *StalePendingCleaner) Start(ctx context.Context) {
	logger.Info("保留中予約クリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("max_pending_age", c.maxPendingAge),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("保留中予約クリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("保留中予約クリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *StalePendingCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は放置された保留中予約を取り消す
func (c *StalePendingCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("保留中予約のクリーンアップ開始")

	count, err := c.reservationService.CancelStalePending(ctx, c.maxPendingAge)
	if err != nil {
		log.Error("保留中予約のクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("放置された保留中予約を取り消し", zap.Int("count", count))
	} else {
		log.Debug("対象の保留中予約なし")
	}
}
