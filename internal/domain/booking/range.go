package booking

import (
	"fmt"
	"time"
)

// DateLayout は日付入力のフォーマット（日単位）
const DateLayout = "2006-01-02"

// DateRange は半開区間 [CheckIn, CheckOut) の宿泊期間を表す値オブジェクト
// CheckOut 当日は含まれないため、同日のチェックアウトとチェックインは重複しない
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange は検証済みの DateRange を作成する
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	d := DateRange{CheckIn: truncateToDay(checkIn), CheckOut: truncateToDay(checkOut)}
	if err := d.Validate(); err != nil {
		return DateRange{}, err
	}
	return d, nil
}

// ParseDateRange は "2006-01-02" 形式の文字列から DateRange を作成する
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.ParseInLocation(DateLayout, checkIn, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: チェックイン日 %q", ErrInvalidDateRange, checkIn)
	}
	out, err := time.ParseInLocation(DateLayout, checkOut, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: チェックアウト日 %q", ErrInvalidDateRange, checkOut)
	}
	return NewDateRange(in, out)
}

// Validate は期間の不変条件（CheckIn < CheckOut）を検証する
func (d DateRange) Validate() error {
	if !d.CheckIn.Before(d.CheckOut) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps は2つの半開区間が交差するかを返す
// 境界が接する（片方のチェックアウト = もう片方のチェックイン）場合は重複しない
func (d DateRange) Overlaps(o DateRange) bool {
	return d.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(d.CheckOut)
}

// Nights は宿泊日数を返す
func (d DateRange) Nights() int {
	return int(d.CheckOut.Sub(d.CheckIn).Hours() / 24)
}

// String は "checkIn → checkOut" 形式の表記を返す
func (d DateRange) String() string {
	return d.CheckIn.Format(DateLayout) + " → " + d.CheckOut.Format(DateLayout)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
