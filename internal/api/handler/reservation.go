package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mar1uz/cabana-test/internal/application"
	"github.com/mar1uz/cabana-test/internal/domain/booking"
)

// ReservationHandler は予約APIのハンドラー
type ReservationHandler struct {
	reservationService ReservationServiceInterface
}

// NewReservationHandler は新しいReservationHandlerを作成する
func NewReservationHandler(reservationService ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CreateReservationRequest は予約作成リクエスト
type CreateReservationRequest struct {
	CheckIn    string `json:"check_in" validate:"required" example:"2024-03-01"`
	CheckOut   string `json:"check_out" validate:"required" example:"2024-03-05"`
	Guests     int    `json:"guests" validate:"required,min=1" example:"2"`
	TotalPrice int64  `json:"total_price" validate:"min=0" example:"48000"`
	PaymentRef string `json:"payment_ref" example:"TEST-MODE"`
}

// ReservationResponse は予約レスポンス
type ReservationResponse struct {
	ID         int64  `json:"id" example:"42"`
	OwnerID    int64  `json:"owner_id" example:"7"`
	CheckIn    string `json:"check_in" example:"2024-03-01"`
	CheckOut   string `json:"check_out" example:"2024-03-05"`
	Guests     int    `json:"guests" example:"2"`
	TotalPrice int64  `json:"total_price" example:"48000"`
	PaymentRef string `json:"payment_ref" example:"TEST-MODE"`
	Status     string `json:"status" example:"pending"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toReservationResponse(r *booking.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		CheckIn:    r.Dates.CheckIn.Format(booking.DateLayout),
		CheckOut:   r.Dates.CheckOut.Format(booking.DateLayout),
		Guests:     r.Guests,
		TotalPrice: r.TotalPrice,
		PaymentRef: r.PaymentRef,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toReservationResponses(reservations []*booking.Reservation) []ReservationResponse {
	result := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		result[i] = toReservationResponse(r)
	}
	return result
}

// Create は新しい予約を作成する
// 作成時点では空き状況を検証しない。重複の検証は確定時に行う
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	var req CreateReservationRequest
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

	// 決済参照がない場合はテストモードとして扱う
	paymentRef := req.PaymentRef
	if paymentRef == "" {
		paymentRef = booking.PaymentRefNone
	}

	reservation, err := h.reservationService.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		OwnerID:    actor.UserID,
		Dates:      dates,
		Guests:     req.Guests,
		TotalPrice: req.TotalPrice,
		PaymentRef: paymentRef,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, toReservationResponse(reservation))
}

// List は操作者自身の予約一覧を返す
// GET /api/v1/reservations
func (h *ReservationHandler) List(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	limit, offset := listParams(c)
	reservations, err := h.reservationService.GetOwnerReservations(c.Request().Context(), actor.UserID, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reservations": toReservationResponses(reservations),
	})
}

// GetByID は予約の詳細を返す
// 所有者または管理者のみ参照できる
// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetByID(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	id, err := reservationID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.GetReservation(c.Request().Context(), id, actor)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toReservationResponse(reservation))
}

// Confirm は保留中の予約を確定する
// 確定済み予約との期間重複がある場合は競合一覧とともに409を返す
// POST /api/v1/reservations/:id/confirm
func (h *ReservationHandler) Confirm(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	id, err := reservationID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.ConfirmReservation(c.Request().Context(), id, actor)
	if err != nil {
		var ce *booking.ConflictError
		if errors.As(err, &ce) {
			return conflictResponse(c, ce)
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toReservationResponse(reservation))
}

// Cancel は予約を取り消す
// POST /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}

	id, err := reservationID(c)
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.CancelReservation(c.Request().Context(), id, actor)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, toReservationResponse(reservation))
}

func listParams(c echo.Context) (int, int) {
	limit := 20
	offset := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
