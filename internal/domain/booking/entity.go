package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// PaymentRefNone は決済不要の予約（テスト・運営者作成）を表すセンチネル値
const PaymentRefNone = "TEST-MODE"

// Reservation は宿泊予約エンティティを表す
// Dates・OwnerID・CreatedAt は作成後に変更されない。状態遷移は Status のみ
type Reservation struct {
	ID         int64
	OwnerID    int64
	Dates      DateRange
	Guests     int
	TotalPrice int64 // 通貨の最小単位（セント）
	PaymentRef string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReservation は保留中（pending）状態の新しい予約を作成する
// 作成時点では空き状況を要求しない。重複判定は確定時に行われる
func NewReservation(ownerID int64, dates DateRange, guests int, totalPrice int64, paymentRef string) *Reservation {
	now := time.Now().UTC()
	return &Reservation{
		OwnerID:    ownerID,
		Dates:      dates,
		Guests:     guests,
		TotalPrice: totalPrice,
		PaymentRef: paymentRef,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsPending は予約が保留中かを返す
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Confirm は予約を確定する。保留中以外からの遷移は拒否する
func (r *Reservation) Confirm() error {
	switch r.Status {
	case StatusConfirmed:
		return ErrReservationAlreadyConfirmed
	case StatusCancelled:
		return ErrReservationAlreadyCancelled
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel は予約をキャンセルする
// キャンセル済みの再キャンセルは常に拒否する（冪等な成功ではなくエラー）
// 確定済み予約のキャンセルは運営者による明示的な操作のみ許可する
func (r *Reservation) Cancel(asOperator bool) error {
	switch r.Status {
	case StatusCancelled:
		return ErrReservationAlreadyCancelled
	case StatusConfirmed:
		if !asOperator {
			return ErrReservationAlreadyConfirmed
		}
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.OwnerID <= 0 {
		return ErrOwnerRequired
	}
	if err := r.Dates.Validate(); err != nil {
		return err
	}
	if r.Guests <= 0 {
		return ErrGuestsInvalid
	}
	if r.TotalPrice < 0 {
		return ErrPriceNegative
	}
	if r.PaymentRef == "" {
		return ErrPaymentRefRequired
	}
	return nil
}
