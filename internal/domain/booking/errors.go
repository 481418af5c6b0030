package booking

import (
	"errors"
	"strings"
)

// 予約ドメインのエラー定義
var (
	ErrInvalidDateRange            = errors.New("チェックアウト日はチェックイン日より後である必要があります")
	ErrReservationNotFound         = errors.New("予約が見つかりません")
	ErrForbidden                   = errors.New("この操作を行う権限がありません")
	ErrReservationNotPending       = errors.New("予約は保留中ではありません")
	ErrReservationAlreadyConfirmed = errors.New("予約は既に確定されています")
	ErrReservationAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrDateConflict                = errors.New("指定期間は確定済みの予約と重複しています")
	ErrOwnerRequired               = errors.New("予約者IDは必須です")
	ErrGuestsInvalid               = errors.New("宿泊人数は1人以上である必要があります")
	ErrPriceNegative               = errors.New("合計金額は0以上である必要があります")
	ErrPaymentRefRequired          = errors.New("決済参照は必須です")
)

// ConflictError は確定時の期間重複を表すエラー
// 競合する確定済み予約の期間を保持し、呼び出し側が解決手段を提示できるようにする
type ConflictError struct {
	Conflicts []DateRange
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return ErrDateConflict.Error()
	}
	ranges := make([]string, len(e.Conflicts))
	for i, r := range e.Conflicts {
		ranges[i] = r.String()
	}
	return ErrDateConflict.Error() + ": " + strings.Join(ranges, ", ")
}

// Is は errors.Is(err, ErrDateConflict) での判定を可能にする
func (e *ConflictError) Is(target error) bool {
	return target == ErrDateConflict
}
