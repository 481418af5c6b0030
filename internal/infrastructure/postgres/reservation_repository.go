package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
	"github.com/mar1uz/cabana-test/internal/domain/transaction"
)

// pgExclusionViolation は排他制約違反（確定済み期間の重複）のエラーコード
const pgExclusionViolation = "23P01"

type reservationRow struct {
	ID         int64     `db:"id"`
	OwnerID    int64     `db:"owner_id"`
	CheckIn    time.Time `db:"check_in"`
	CheckOut   time.Time `db:"check_out"`
	Guests     int       `db:"guests"`
	TotalPrice int64     `db:"total_price"`
	PaymentRef string    `db:"payment_ref"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *reservationRow) toEntity() *booking.Reservation {
	return &booking.Reservation{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Dates: booking.DateRange{
			CheckIn:  r.CheckIn.UTC(),
			CheckOut: r.CheckOut.UTC(),
		},
		Guests:     r.Guests,
		TotalPrice: r.TotalPrice,
		PaymentRef: r.PaymentRef,
		Status:     booking.Status(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const reservationColumns = `id, owner_id, check_in, check_out, guests, total_price, payment_ref, status, created_at, updated_at`

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *booking.Reservation) error {
	query := `INSERT INTO reservations (owner_id, check_in, check_out, guests, total_price, payment_ref, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		res.OwnerID, res.Dates.CheckIn, res.Dates.CheckOut, res.Guests,
		res.TotalPrice, res.PaymentRef, string(res.Status), res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*booking.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByOwnerID(ctx context.Context, ownerID int64, limit, offset int) ([]*booking.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListAll(ctx context.Context, limit, offset int) ([]*booking.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("全予約取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListConfirmedOverlapping(ctx context.Context, dates booking.DateRange) ([]*booking.Reservation, error) {
	var rows []reservationRow
	// 半開区間 [check_in, check_out) の交差判定: s1 < e2 AND s2 < e1
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'confirmed' AND check_in < $2 AND check_out > $1
	          ORDER BY check_in`
	if err := r.db.SelectContext(ctx, &rows, query, dates.CheckIn, dates.CheckOut); err != nil {
		return nil, fmt.Errorf("重複予約取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListConfirmedOverlappingTx(ctx context.Context, tx transaction.Tx, dates booking.DateRange, excludeID int64) ([]*booking.Reservation, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクション型です")
	}
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'confirmed' AND id <> $3 AND check_in < $2 AND check_out > $1
	          ORDER BY check_in`
	if err := sqlxTx.SelectContext(ctx, &rows, query, dates.CheckIn, dates.CheckOut, excludeID); err != nil {
		return nil, fmt.Errorf("重複予約取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListConfirmedRanges(ctx context.Context) ([]booking.DateRange, error) {
	var rows []struct {
		CheckIn  time.Time `db:"check_in"`
		CheckOut time.Time `db:"check_out"`
	}
	// 公開カレンダー向け。期間以外の列（予約者・金額）は取得しない
	query := `SELECT check_in, check_out FROM reservations WHERE status = 'confirmed' ORDER BY check_in`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("確定済み期間取得に失敗: %w", err)
	}
	ranges := make([]booking.DateRange, len(rows))
	for i, row := range rows {
		ranges[i] = booking.DateRange{CheckIn: row.CheckIn.UTC(), CheckOut: row.CheckOut.UTC()}
	}
	return ranges, nil
}

func (r *ReservationRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*booking.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'pending' AND created_at < NOW() - $1::interval`
	if err := r.db.SelectContext(ctx, &rows, query, olderThan.String()); err != nil {
		return nil, fmt.Errorf("放置された保留中予約の取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, res *booking.Reservation, expected booking.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}
	// 比較更新: 取得時の状態から変わっていた場合は0行更新となり、二重適用を防ぐ
	query := `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(res.Status), res.UpdatedAt, res.ID, string(expected))
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return &booking.ConflictError{}
		}
		return fmt.Errorf("予約状態の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

func toEntities(rows []reservationRow) []*booking.Reservation {
	result := make([]*booking.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*ReservationRepository)(nil)
