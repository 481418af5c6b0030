package booking

import (
	"context"
	"time"

	"github.com/mar1uz/cabana-test/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を保存し、採番された ID をエンティティへ書き戻す
	Create(ctx context.Context, r *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id int64) (*Reservation, error)

	// GetByOwnerID は予約者IDから予約一覧を取得する（作成日時の降順）
	GetByOwnerID(ctx context.Context, ownerID int64, limit, offset int) ([]*Reservation, error)

	// ListAll は全予約を取得する（運営者向け、作成日時の降順）
	ListAll(ctx context.Context, limit, offset int) ([]*Reservation, error)

	// ListConfirmedOverlapping は指定期間と重複する確定済み予約を取得する
	ListConfirmedOverlapping(ctx context.Context, dates DateRange) ([]*Reservation, error)

	// ListConfirmedOverlappingTx はトランザクション内で重複確認を行う
	// excludeID は確定対象自身を除外するために使う（自己競合の防止）
	ListConfirmedOverlappingTx(ctx context.Context, tx transaction.Tx, dates DateRange, excludeID int64) ([]*Reservation, error)

	// ListConfirmedRanges は確定済み予約の期間のみを取得する（公開カレンダー向け）
	ListConfirmedRanges(ctx context.Context) ([]DateRange, error)

	// ListStalePending は指定時間より古い保留中予約を取得する
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]*Reservation, error)

	// UpdateStatus は expected からの状態遷移を比較更新で書き込む（トランザクション必須）
	// 対象行が存在しない・状態が一致しない場合は ErrReservationNotFound を返す
	// 確定書き込みが重複排他制約に違反した場合は *ConflictError を返す
	UpdateStatus(ctx context.Context, tx transaction.Tx, r *Reservation, expected Status) error
}
