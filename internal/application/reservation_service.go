package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
	"github.com/mar1uz/cabana-test/internal/domain/transaction"
	redislock "github.com/mar1uz/cabana-test/internal/infrastructure/redis"
	"github.com/mar1uz/cabana-test/internal/pkg/logger"
	"github.com/mar1uz/cabana-test/internal/pkg/metrics"
)

const defaultListLimit = 20

// ReservationService は予約のライフサイクル（作成・確定・キャンセル）を統括する
// 確定処理だけが直列化を要する。正しさはDBの排他制約が保証し、
// Redisロックは競合時の無駄な失敗を減らす前段でしかない（nil可）
type ReservationService struct {
	txManager   transaction.Manager
	repo        booking.Repository
	lockManager redislock.LockManagerInterface
	cache       CalendarCache
}

func NewReservationService(txm transaction.Manager, repo booking.Repository, lm redislock.LockManagerInterface, cache CalendarCache) *ReservationService {
	return &ReservationService{txManager: txm, repo: repo, lockManager: lm, cache: cache}
}

type CreateReservationInput struct {
	OwnerID    int64
	Dates      booking.DateRange
	Guests     int
	TotalPrice int64
	PaymentRef string
}

// CreateReservation は保留中の予約を作成する
// 空き状況は検証しない: 保留中の予約はカレンダーを塞がず、重複の裁定は確定時に行う
// （支払いが放棄された仮押さえが他の客の予約を妨げないようにするため）
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*booking.Reservation, error) {
	res := booking.NewReservation(input.OwnerID, input.Dates, input.Guests, input.TotalPrice, input.PaymentRef)
	if err := res.Validate(); err != nil {
		countReservation("create", "invalid")
		return nil, err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		countReservation("create", "error")
		return nil, err
	}

	// 確定済み予約と既に重複している保留は確定できない運命にある
	// 仕様上は許可されるため作成は成功させ、運用者向けに警告だけ残す
	if conflicts, err := s.repo.ListConfirmedOverlapping(ctx, res.Dates); err == nil && len(conflicts) > 0 {
		logger.Warn("確定済み予約と重複する保留中予約が作成されました",
			zap.Int64("reservation_id", res.ID),
			zap.String("dates", res.Dates.String()),
			zap.Int("conflicts", len(conflicts)),
		)
	}

	countReservation("create", "success")
	if m := metrics.Get(); m != nil {
		m.ActiveReservations.WithLabelValues(string(booking.StatusPending)).Inc()
	}
	logger.Info("予約を作成しました",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("owner_id", res.OwnerID),
		zap.String("dates", res.Dates.String()),
	)
	return res, nil
}

// ConfirmReservation は保留中の予約を確定する（運営者のみ）
// 確認と書き込みは単一トランザクションで実行され、確定済み期間の重複は
// ストレージの排他制約が最終的に防ぐ。競合した2つの確定のうち必ず片方だけが成功する
func (s *ReservationService) ConfirmReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	// 権限はストレージに触れる前に確認する（存在有無を漏らさない）
	if !actor.IsAdmin {
		countReservation("confirm", "forbidden")
		return nil, booking.ErrForbidden
	}

	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redislock.CalendarLockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err == nil {
			defer lock.Release(ctx)
		} else if !errors.Is(err, redislock.ErrLockNotAcquired) {
			logger.Warn("カレンダーロックの取得に失敗（DB制約にフォールバック）", zap.Error(err))
		}
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		countReservation("confirm", "error")
		return nil, err
	}
	if err := res.Confirm(); err != nil {
		countReservation("confirm", "invalid")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		countReservation("confirm", "error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 同一トランザクション内で重複を再確認し、競合相手の期間をエラーに載せる
	// 自分自身は未確定なので除外する（自己競合はあり得ない）
	conflicts, err := s.repo.ListConfirmedOverlappingTx(ctx, tx, res.Dates, res.ID)
	if err != nil {
		countReservation("confirm", "error")
		return nil, err
	}
	if len(conflicts) > 0 {
		countReservation("confirm", "conflict")
		return nil, conflictError(conflicts)
	}

	if err := s.repo.UpdateStatus(ctx, tx, res, booking.StatusPending); err != nil {
		// 再確認と書き込みの間に他の確定がコミットされた場合は排他制約違反で検出される
		// 制約は相手の期間を知らないため、競合相手を取り直してエラーに載せる
		if errors.Is(err, booking.ErrDateConflict) {
			countReservation("confirm", "conflict")
			return nil, s.constraintConflictError(ctx, res.Dates)
		}
		// 比較更新が0行なら取得後に状態が変わっている。現在状態から遷移エラーを返す
		if errors.Is(err, booking.ErrReservationNotFound) {
			countReservation("confirm", "invalid")
			return nil, s.staleTransitionError(ctx, id)
		}
		countReservation("confirm", "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		countReservation("confirm", "error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCalendar(ctx)
	countReservation("confirm", "success")
	if m := metrics.Get(); m != nil {
		m.ActiveReservations.WithLabelValues(string(booking.StatusPending)).Dec()
		m.ActiveReservations.WithLabelValues(string(booking.StatusConfirmed)).Inc()
	}
	logger.Info("予約を確定しました",
		zap.Int64("reservation_id", res.ID),
		zap.String("dates", res.Dates.String()),
		zap.Int64("operator_id", actor.UserID),
	)
	return res, nil
}

// CancelReservation は予約をキャンセルする（予約者本人または運営者）
// 状態の比較更新により、同時キャンセルは片方だけが成功する
func (s *ReservationService) CancelReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		countReservation("cancel", "error")
		return nil, err
	}
	if !actor.CanManage(res) {
		countReservation("cancel", "forbidden")
		return nil, booking.ErrForbidden
	}

	prev := res.Status
	if err := res.Cancel(actor.IsAdmin); err != nil {
		countReservation("cancel", "invalid")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		countReservation("cancel", "error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.UpdateStatus(ctx, tx, res, prev); err != nil {
		if errors.Is(err, booking.ErrReservationNotFound) {
			// 取得後に他の操作が先行した（二重キャンセル等）。現在の状態で遷移エラーを返す
			countReservation("cancel", "invalid")
			return nil, s.staleTransitionError(ctx, id)
		}
		countReservation("cancel", "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		countReservation("cancel", "error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCalendar(ctx)
	countReservation("cancel", "success")
	if m := metrics.Get(); m != nil {
		m.ActiveReservations.WithLabelValues(string(prev)).Dec()
	}
	logger.Info("予約をキャンセルしました",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("actor_id", actor.UserID),
		zap.Bool("as_operator", actor.IsAdmin),
	)
	return res, nil
}

// GetReservation は予約を取得する（予約者本人または運営者）
func (s *ReservationService) GetReservation(ctx context.Context, id int64, actor booking.Actor) (*booking.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(res) {
		return nil, booking.ErrForbidden
	}
	return res, nil
}

// GetOwnerReservations は予約者自身の予約一覧を取得する
func (s *ReservationService) GetOwnerReservations(ctx context.Context, ownerID int64, limit, offset int) ([]*booking.Reservation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.GetByOwnerID(ctx, ownerID, limit, offset)
}

// ListAllReservations は全予約を取得する（運営者のみ）
func (s *ReservationService) ListAllReservations(ctx context.Context, actor booking.Actor, limit, offset int) ([]*booking.Reservation, error) {
	if !actor.IsAdmin {
		return nil, booking.ErrForbidden
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListAll(ctx, limit, offset)
}

// CancelStalePending は一定時間を超えて放置された保留中予約をキャンセルする
// 支払いが完了しないまま残った仮押さえの後始末であり、確定済み予約には触れない
func (s *ReservationService) CancelStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, res := range stale {
		if err := res.Cancel(true); err != nil {
			continue
		}
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return cancelled, fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		if err := s.repo.UpdateStatus(ctx, tx, res, booking.StatusPending); err != nil {
			tx.Rollback()
			if errors.Is(err, booking.ErrReservationNotFound) {
				// 取得後に確定・キャンセルされた予約はスキップ
				continue
			}
			return cancelled, err
		}
		if err := tx.Commit(); err != nil {
			return cancelled, fmt.Errorf("コミットに失敗: %w", err)
		}
		cancelled++
		logger.Info("放置された保留中予約をキャンセルしました",
			zap.Int64("reservation_id", res.ID),
			zap.String("payment_ref", res.PaymentRef),
		)
	}
	if cancelled > 0 {
		if m := metrics.Get(); m != nil {
			m.ActiveReservations.WithLabelValues(string(booking.StatusPending)).Sub(float64(cancelled))
		}
	}
	return cancelled, nil
}

// constraintConflictError は排他制約で検出された競合の相手期間を取り直す
// 取り直しに失敗しても競合である事実は変わらないため、期間なしの競合エラーに落とす
func (s *ReservationService) constraintConflictError(ctx context.Context, dates booking.DateRange) error {
	conflicts, err := s.repo.ListConfirmedOverlapping(ctx, dates)
	if err != nil || len(conflicts) == 0 {
		return &booking.ConflictError{}
	}
	return conflictError(conflicts)
}

// staleTransitionError は比較更新に敗れた後の現在状態から遷移エラーを組み立てる
func (s *ReservationService) staleTransitionError(ctx context.Context, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch current.Status {
	case booking.StatusCancelled:
		return booking.ErrReservationAlreadyCancelled
	case booking.StatusConfirmed:
		return booking.ErrReservationAlreadyConfirmed
	default:
		return booking.ErrReservationNotPending
	}
}

func (s *ReservationService) invalidateCalendar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("カレンダーキャッシュの無効化に失敗", zap.Error(err))
	}
}

func conflictError(conflicts []*booking.Reservation) error {
	ranges := make([]booking.DateRange, len(conflicts))
	for i, c := range conflicts {
		ranges[i] = c.Dates
	}
	return &booking.ConflictError{Conflicts: ranges}
}

func countReservation(operation, status string) {
	if m := metrics.Get(); m != nil {
		m.ReservationsTotal.WithLabelValues(operation, status).Inc()
	}
}
