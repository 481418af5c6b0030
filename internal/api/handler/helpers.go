package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

const (
	// 認証済みゲートウェイが付与するヘッダー。認証そのものは外部の責務
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
	roleAdmin      = "admin"
)

// actorFromRequest はリクエストヘッダーから操作者を解決する
func actorFromRequest(c echo.Context) (booking.Actor, error) {
	raw := c.Request().Header.Get(headerUserID)
	if raw == "" {
		return booking.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return booking.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "無効なユーザーIDです")
	}
	return booking.Actor{
		UserID:  userID,
		IsAdmin: c.Request().Header.Get(headerUserRole) == roleAdmin,
	}, nil
}

// reservationID はパスパラメータから予約IDを取り出す
func reservationID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "無効な予約IDです")
	}
	return id, nil
}

// toHTTPError はドメインエラーをHTTPエラーへ変換する
// 権限エラーは対象の存在有無を含まない固定メッセージを返す
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, booking.ErrOwnerRequired),
		errors.Is(err, booking.ErrGuestsInvalid),
		errors.Is(err, booking.ErrPriceNegative),
		errors.Is(err, booking.ErrPaymentRefRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrReservationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, booking.ErrForbidden.Error())
	case errors.Is(err, booking.ErrReservationNotPending),
		errors.Is(err, booking.ErrReservationAlreadyConfirmed),
		errors.Is(err, booking.ErrReservationAlreadyCancelled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrDateConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// RangeResponse は期間のみの公開表現
type RangeResponse struct {
	CheckIn  string `json:"check_in" example:"2024-03-01"`
	CheckOut string `json:"check_out" example:"2024-03-05"`
}

func toRangeResponse(r booking.DateRange) RangeResponse {
	return RangeResponse{
		CheckIn:  r.CheckIn.Format(booking.DateLayout),
		CheckOut: r.CheckOut.Format(booking.DateLayout),
	}
}

// ConflictingReservation は競合する確定済み予約の公開表現
// 予約者や金額は公開面に出さない
type ConflictingReservation struct {
	ID       int64  `json:"id" example:"42"`
	CheckIn  string `json:"check_in" example:"2024-03-01"`
	CheckOut string `json:"check_out" example:"2024-03-05"`
}

func toConflictingReservations(conflicts []*booking.Reservation) []ConflictingReservation {
	result := make([]ConflictingReservation, len(conflicts))
	for i, r := range conflicts {
		result[i] = ConflictingReservation{
			ID:       r.ID,
			CheckIn:  r.Dates.CheckIn.Format(booking.DateLayout),
			CheckOut: r.Dates.CheckOut.Format(booking.DateLayout),
		}
	}
	return result
}

// ConflictResponse は確定が期間重複で拒否された際のレスポンス
type ConflictResponse struct {
	Error     string          `json:"error"`
	Conflicts []RangeResponse `json:"conflicts"`
}

func conflictResponse(c echo.Context, ce *booking.ConflictError) error {
	conflicts := make([]RangeResponse, len(ce.Conflicts))
	for i, r := range ce.Conflicts {
		conflicts[i] = toRangeResponse(r)
	}
	return c.JSON(http.StatusConflict, ConflictResponse{
		Error:     booking.ErrDateConflict.Error(),
		Conflicts: conflicts,
	})
}
