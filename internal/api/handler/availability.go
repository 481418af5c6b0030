package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

// AvailabilityHandler は空き状況APIのハンドラー
type AvailabilityHandler struct {
	availabilityService AvailabilityServiceInterface
}

// NewAvailabilityHandler は新しいAvailabilityHandlerを作成する
func NewAvailabilityHandler(availabilityService AvailabilityServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
	}
}

// CheckAvailabilityRequest は空き状況確認リクエスト
type CheckAvailabilityRequest struct {
	CheckIn  string `json:"check_in" validate:"required" example:"2024-03-01"`
	CheckOut string `json:"check_out" validate:"required" example:"2024-03-05"`
}

// CheckAvailabilityResponse は空き状況確認レスポンス
type CheckAvailabilityResponse struct {
	Available bool                     `json:"available"`
	Conflicts []ConflictingReservation `json:"conflicts"`
}

// Check は指定期間の空き状況を確認する
// POST /api/v1/availability/check
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var req CheckAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dates, err := booking.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return toHTTPError(err)
	}

	available, conflicts, err := h.availabilityService.Check(c.Request().Context(), dates)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, CheckAvailabilityResponse{
		Available: available,
		Conflicts: toConflictingReservations(conflicts),
	})
}

// BookedDatesResponse は予約済み期間一覧レスポンス
type BookedDatesResponse struct {
	BookedRanges []RangeResponse `json:"booked_ranges"`
}

// BookedDates は確定済み予約の期間一覧を返す
// 期間以外の予約情報は含まない
// GET /api/v1/booked-dates
func (h *AvailabilityHandler) BookedDates(c echo.Context) error {
	ranges, err := h.availabilityService.BookedRanges(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}

	result := make([]RangeResponse, len(ranges))
	for i, r := range ranges {
		result[i] = toRangeResponse(r)
	}

	return c.JSON(http.StatusOK, BookedDatesResponse{BookedRanges: result})
}
